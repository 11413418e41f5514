package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basler/crawler/internal/domain"
)

func newMockRepository(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewProductLinkRepository(mock), mock
}

func sampleLink() domain.ProductLink {
	return domain.ProductLink{
		ProductLink: "https://www.baslerweb.com/en-us/shop/cam-x",
		Lineage: domain.Lineage{
			MainCategoryLink:    "https://www.baslerweb.com/en-us/cameras/",
			SubCategoryLink:     "https://www.baslerweb.com/en-us/cameras/area-scan/",
			ProductCategoryLink: "https://www.baslerweb.com/en-us/cameras/area-scan/ace-2/",
		},
	}
}

func TestSaveProductLinkInserted(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	link := sampleLink()

	metadata := []byte(`[{"main category link":"https://www.baslerweb.com/en-us/cameras/"},` +
		`{"Sub category link":"https://www.baslerweb.com/en-us/cameras/area-scan/"},` +
		`{"Prod category link":"https://www.baslerweb.com/en-us/cameras/area-scan/ace-2/"}]`)

	mock.ExpectExec("INSERT INTO products_links").
		WithArgs(link.ProductLink, metadata).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	result, err := repo.SaveProductLink(context.Background(), link)
	require.NoError(t, err)
	assert.Equal(t, domain.SaveResultInserted, result)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveProductLinkDuplicate(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	link := sampleLink()

	mock.ExpectExec("INSERT INTO products_links").
		WithArgs(link.ProductLink, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	result, err := repo.SaveProductLink(context.Background(), link)
	require.NoError(t, err)
	assert.Equal(t, domain.SaveResultDuplicate, result)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveProductLinkError(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)

	mock.ExpectExec("INSERT INTO products_links").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.SaveProductLink(context.Background(), sampleLink())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveCategories(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	main := domain.CategoryNode{Name: "Cameras", Link: "https://www.baslerweb.com/en-us/cameras/", Level: domain.LevelMain}
	sub := domain.CategoryNode{Name: "Area Scan Cameras", Link: "https://www.baslerweb.com/en-us/cameras/area-scan/", Level: domain.LevelSub}

	mock.ExpectExec("INSERT INTO main_categories_links").
		WithArgs(main.Name, main.Link).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO sub_categories_links").
		WithArgs(sub.Name, sub.Link).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	result, err := repo.SaveMainCategory(context.Background(), main)
	require.NoError(t, err)
	assert.Equal(t, domain.SaveResultInserted, result)

	result, err = repo.SaveSubCategory(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, domain.SaveResultDuplicate, result)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductLinks(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)

	rows := mock.NewRows([]string{"id", "product_link", "metadata"}).
		AddRow(int64(1), "https://www.baslerweb.com/en-us/shop/cam-x", `[{"main category link":"a"}]`).
		AddRow(int64(2), "https://www.baslerweb.com/en-us/shop/cam-y", `[{"main category link":"b"}]`)
	mock.ExpectQuery("SELECT id, product_link, metadata::text FROM products_links").
		WillReturnRows(rows)

	links, err := repo.ListProductLinks(context.Background())
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, domain.StoredProductLink{
		ID:          1,
		ProductLink: "https://www.baslerweb.com/en-us/shop/cam-x",
		Metadata:    `[{"main category link":"a"}]`,
	}, links[0])
	assert.Equal(t, int64(2), links[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	assert.ElementsMatch(t, []string{"000001_init.down.sql", "000001_init.up.sql"}, names)
}
