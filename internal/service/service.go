package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"basler/crawler/internal/client"
	"basler/crawler/internal/domain"
	"basler/crawler/internal/domain/task"
	"basler/crawler/internal/metrics"
	"basler/crawler/internal/queue"
	"basler/crawler/internal/repository"
	"basler/crawler/internal/state"
)

type Service struct {
	repository   repository.ProductLinkRepository
	client       client.BaslerClient
	queue        queue.Queue        // optional
	stateManager state.StateManager // optional
}

func NewService(
	repository repository.ProductLinkRepository,
	client client.BaslerClient,
	queue queue.Queue,
	stateManager state.StateManager,
) *Service {
	return &Service{
		repository:   repository,
		client:       client,
		queue:        queue,
		stateManager: stateManager,
	}
}

// crawlRun is the state of one Crawl call.
type crawlRun struct {
	summary *domain.CrawlSummary
	logger  *log.Entry
}

// Crawl walks the whole category tree once and persists every product link found.
// Only a failure to load the tree aborts the run; per-link failures are logged and counted.
func (s *Service) Crawl(ctx context.Context) (*domain.CrawlSummary, error) {
	run := &crawlRun{
		summary: &domain.CrawlSummary{
			RunID:     uuid.NewString(),
			StartedAt: time.Now().UTC(),
		},
	}
	run.logger = log.WithField("run_id", run.summary.RunID)
	run.logger.Info("🚀 Starting crawl")

	tree, err := s.client.GetCategoryTree(ctx)
	if err != nil {
		run.logger.Errorf("❌ Failed to load category tree: %v", err)
		return nil, fmt.Errorf("failed to load category tree: %w", err)
	}
	run.summary.MainCategories = len(tree)

	for _, mainCategory := range tree {
		if err := ctx.Err(); err != nil {
			return run.summary, err
		}

		run.logger.Infof("🔄 Processing main category %s", mainCategory.Name)
		s.saveCategory(ctx, run, mainCategory.CategoryNode, s.repository.SaveMainCategory)

		for _, subCategory := range mainCategory.Subcategories {
			run.summary.SubCategories++
			run.logger.Infof("🔄 Processing sub category %s / %s", mainCategory.Name, subCategory.Name)
			s.saveCategory(ctx, run, subCategory.CategoryNode, s.repository.SaveSubCategory)

			for _, productCategory := range subCategory.ProductCategories {
				lineage := domain.Lineage{
					MainCategoryLink: mainCategory.Link,
					SubCategoryLink:  subCategory.Link,
				}
				s.processProductCategory(ctx, run, productCategory, lineage)
			}
		}
	}

	run.summary.FinishedAt = time.Now().UTC()
	metrics.ObserveRunDuration(run.summary.FinishedAt.Sub(run.summary.StartedAt).Seconds())
	s.recordRun(ctx, run)

	run.logger.Infof("✅ Crawl finished: %d inserted, %d duplicates, %d failed, %d links skipped, %d pages",
		run.summary.LinksInserted,
		run.summary.LinksDuplicate,
		run.summary.LinksFailed,
		run.summary.SkippedLinks,
		run.summary.PagesFetched,
	)
	return run.summary, nil
}

func (s *Service) processProductCategory(ctx context.Context, run *crawlRun, node domain.CategoryNode, lineage domain.Lineage) {
	if s.client.ClassifyLink(node.Link) == domain.ShapeDirectProduct {
		run.summary.DirectLinks++
		metrics.ObserveCategoryLink("direct")

		lineage.ProductCategoryLink = domain.NotApplicable
		s.persist(ctx, run, node.Link, lineage)
		return
	}

	run.summary.ProductCategoryLinks++
	lineage.ProductCategoryLink = node.Link

	resolved, err := s.client.ResolveCategoryID(ctx, node.Link)
	if err != nil {
		run.summary.SkippedLinks++
		metrics.ObserveCategoryLink("skipped")

		if errors.Is(err, client.ErrNoCategoryFound) || errors.Is(err, client.ErrNoSlug) {
			run.logger.Warnf("⚠️ Skipping %s: %v", node.Link, err)
		} else {
			run.logger.Errorf("❌ Skipping %s: %v", node.Link, err)
		}
		return
	}

	run.summary.ResolvedCategories++
	metrics.ObserveCategoryLink("resolved")

	pagesWalked := 0
	listingFailed := false
	for page, err := range s.client.ProductPages(ctx, resolved.CategoryID) {
		if err != nil {
			listingFailed = true
			run.logger.Errorf("❌ Listing of %s (category %s) stopped: %v", node.Link, resolved.CategoryID, err)
			break
		}

		pagesWalked++

		run.summary.PagesFetched++
		metrics.ObserveListingPage()

		for _, item := range page.Items {
			if item.URLKey == "" {
				run.logger.Warnf("⚠️ Item without url_key on page %d of category %s", page.PageNumber, resolved.CategoryID)
				continue
			}
			s.persist(ctx, run, s.client.ProductURL(item.URLKey), lineage)
		}
	}

	// An empty category still costs the page 1 request that reported total_count 0
	if pagesWalked == 0 && !listingFailed {
		run.summary.PagesFetched++
		metrics.ObserveListingPage()
		run.logger.Infof("Category %s (%s) lists no products", resolved.CategoryID, node.Link)
	}
}

func (s *Service) persist(ctx context.Context, run *crawlRun, rawLink string, lineage domain.Lineage) {
	productLink, err := client.NormalizeProductLink(rawLink)
	if err != nil {
		run.summary.LinksFailed++
		metrics.ObserveProductLink("failed")
		run.logger.Errorf("❌ %v", err)
		return
	}

	link := domain.ProductLink{ProductLink: productLink, Lineage: lineage}
	result, err := s.repository.SaveProductLink(ctx, link)
	if err != nil {
		run.summary.LinksFailed++
		metrics.ObserveProductLink("failed")
		run.logger.Errorf("❌ Failed to store %s: %v", productLink, err)
		return
	}
	metrics.ObserveProductLink(result.String())

	if result == domain.SaveResultDuplicate {
		run.summary.LinksDuplicate++
		run.logger.Debugf("Product link %s already stored", productLink)
		return
	}

	run.summary.LinksInserted++
	run.logger.Debugf("Stored product link %s", productLink)
	s.publish(ctx, run, link)
}

func (s *Service) publish(ctx context.Context, run *crawlRun, link domain.ProductLink) {
	if s.queue == nil {
		return
	}

	_, err := s.queue.AddTask(ctx, &task.ProductLinkTask{
		ProductLink: link.ProductLink,
		Lineage:     link.Lineage,
		RunID:       run.summary.RunID,
	})
	if err != nil {
		run.logger.Warnf("⚠️ Failed to publish %s: %v", link.ProductLink, err)
	}
}

func (s *Service) saveCategory(
	ctx context.Context,
	run *crawlRun,
	node domain.CategoryNode,
	save func(context.Context, domain.CategoryNode) (domain.SaveResult, error),
) {
	result, err := save(ctx, node)
	if err != nil {
		run.logger.Errorf("❌ Failed to store %s category %s: %v", node.Level, node.Link, err)
		return
	}
	run.logger.Debugf("%s category %s: %s", node.Level, node.Link, result)
}

func (s *Service) recordRun(ctx context.Context, run *crawlRun) {
	if s.stateManager == nil {
		return
	}

	if err := s.stateManager.SaveLastRun(ctx, run.summary); err != nil {
		run.logger.Warnf("⚠️ Failed to record crawl summary: %v", err)
	}
}

// LastRun returns the summary of the previous crawl, or nil when none was recorded.
func (s *Service) LastRun(ctx context.Context) (*domain.CrawlSummary, error) {
	if s.stateManager == nil {
		return nil, nil
	}
	return s.stateManager.GetLastRun(ctx)
}
