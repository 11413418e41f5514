package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"basler/crawler/internal/domain"
)

type ProductLinkRepository interface {
	SaveProductLink(ctx context.Context, link domain.ProductLink) (domain.SaveResult, error)
	SaveMainCategory(ctx context.Context, node domain.CategoryNode) (domain.SaveResult, error)
	SaveSubCategory(ctx context.Context, node domain.CategoryNode) (domain.SaveResult, error)
	ListProductLinks(ctx context.Context) ([]domain.StoredProductLink, error)
}

// querier is the part of pgxpool.Pool the repository needs.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PostgresRepository struct {
	db querier
}

func NewProductLinkRepository(db querier) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// SaveProductLink stores a link once; a link that is already present is reported as a duplicate.
func (r *PostgresRepository) SaveProductLink(ctx context.Context, link domain.ProductLink) (domain.SaveResult, error) {
	metadata, err := json.Marshal(link.Lineage)
	if err != nil {
		return domain.SaveResultDuplicate, fmt.Errorf("failed to encode lineage of %s: %w", link.ProductLink, err)
	}

	query := `
	INSERT INTO products_links (product_link, metadata)
	VALUES ($1, $2)
	ON CONFLICT (product_link) DO NOTHING`
	tag, err := r.db.Exec(ctx, query, link.ProductLink, metadata)
	if err != nil {
		return domain.SaveResultDuplicate, fmt.Errorf("failed to save product link: %w", err)
	}

	return resultOf(tag), nil
}

func (r *PostgresRepository) SaveMainCategory(ctx context.Context, node domain.CategoryNode) (domain.SaveResult, error) {
	query := `
	INSERT INTO main_categories_links (main_category_name, main_category_link)
	VALUES ($1, $2)
	ON CONFLICT (main_category_link) DO NOTHING`
	tag, err := r.db.Exec(ctx, query, node.Name, node.Link)
	if err != nil {
		return domain.SaveResultDuplicate, fmt.Errorf("failed to save main category: %w", err)
	}

	return resultOf(tag), nil
}

func (r *PostgresRepository) SaveSubCategory(ctx context.Context, node domain.CategoryNode) (domain.SaveResult, error) {
	query := `
	INSERT INTO sub_categories_links (sub_category_name, sub_category_link)
	VALUES ($1, $2)
	ON CONFLICT (sub_category_link) DO NOTHING`
	tag, err := r.db.Exec(ctx, query, node.Name, node.Link)
	if err != nil {
		return domain.SaveResultDuplicate, fmt.Errorf("failed to save sub category: %w", err)
	}

	return resultOf(tag), nil
}

// ListProductLinks returns every stored product link ordered by id.
func (r *PostgresRepository) ListProductLinks(ctx context.Context) ([]domain.StoredProductLink, error) {
	rows, err := r.db.Query(ctx, `SELECT id, product_link, metadata::text FROM products_links ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query product links: %w", err)
	}
	defer rows.Close()

	links := make([]domain.StoredProductLink, 0)
	for rows.Next() {
		var link domain.StoredProductLink
		if err := rows.Scan(&link.ID, &link.ProductLink, &link.Metadata); err != nil {
			return nil, fmt.Errorf("failed to scan product link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product links: %w", err)
	}

	return links, nil
}

func resultOf(tag pgconn.CommandTag) domain.SaveResult {
	if tag.RowsAffected() == 0 {
		return domain.SaveResultDuplicate
	}
	return domain.SaveResultInserted
}
