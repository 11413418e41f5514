package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"basler/crawler/internal/cache"
	"basler/crawler/internal/client"
	"basler/crawler/internal/config"
	"basler/crawler/internal/fetcher"
	"basler/crawler/internal/metrics"
	"basler/crawler/internal/queue"
	"basler/crawler/internal/repository"
	"basler/crawler/internal/service"
	"basler/crawler/internal/state"
)

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Client       client.BaslerClient
	Repository   repository.ProductLinkRepository
	Queue        queue.Queue
	StateManager state.StateManager

	Service *service.Service

	fetcher *fetcher.CachedFetcher
	db      *pgxpool.Pool
	redis   *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	store, err := cache.New(cfg.Cache.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize response cache: %w", err)
	}

	container.fetcher = fetcher.NewCachedFetcher(fetcher.Config{
		Timeout:              cfg.Site.RequestTimeout(),
		MaxRequestsPerSecond: cfg.Site.MaxRequestsPerSecond,
		UserAgent:            cfg.Site.UserAgent,
	}, store)

	baslerClient, err := client.NewBaslerClient(cfg.Site, container.fetcher)
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}
	container.Client = baslerClient

	db, err := NewDatabase(ctx, cfg.Database)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.db = db

	if cfg.Database.Migrate {
		if err := repository.RunMigrations(db); err != nil {
			container.Close()
			return nil, err
		}
	}

	repo := repository.NewProductLinkRepository(db)
	container.Repository = repo

	if cfg.Redis.Enabled {
		if err := container.connectRedis(ctx); err != nil {
			container.Close()
			return nil, err
		}
	} else {
		log.Info("Redis disabled, product links will not be published")
	}

	container.Service = service.NewService(
		repo,
		baslerClient,
		container.Queue,
		container.StateManager,
	)

	return container, nil
}

// NewDatabase opens and verifies the Postgres pool.
func NewDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Infof("✅ Connected to Postgres %s:%d/%s", cfg.Host, cfg.Port, cfg.Name)
	return db, nil
}

func (c *Container) connectRedis(ctx context.Context) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", c.Config.Redis.Host, c.Config.Redis.Port),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.Database,
	})

	// Test connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("✅ Connected to Redis successfully")
	c.redis = rdb

	redisQueue, err := queue.NewRedisQueue(ctx, rdb, c.Config.Redis)
	if err != nil {
		return err
	}
	c.Queue = redisQueue
	c.StateManager = state.NewRedisStateManager(rdb)

	return nil
}

// Run executes one crawl, serving metrics alongside it when configured.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	defer stopMetrics()

	if c.Config.Metrics.Listen != "" {
		g.Go(func() error {
			serveMetrics(metricsCtx, c.Config.Metrics.Listen)
			return nil
		})
	}

	g.Go(func() error {
		defer stopMetrics()

		if last, err := c.Service.LastRun(ctx); err != nil {
			log.Warnf("⚠️ Could not read previous crawl summary: %v", err)
		} else if last != nil {
			log.Infof("Previous crawl %s finished at %s with %d new links",
				last.RunID, last.FinishedAt.Format("2006-01-02 15:04:05"), last.LinksInserted)
		}

		_, err := c.Service.Crawl(ctx)
		return err
	})

	return g.Wait()
}

// serveMetrics runs the metrics server; its failure never cancels the crawl.
func serveMetrics(ctx context.Context, addr string) {
	if err := metrics.Serve(ctx, addr); err != nil {
		log.Warnf("⚠️ Metrics server on %s stopped: %v", addr, err)
	}
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.fetcher != nil {
		if err := c.fetcher.Close(); err != nil {
			log.Warnf("⚠️ Failed to close HTTP client: %v", err)
		}
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("⚠️ Failed to close Redis client: %v", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
