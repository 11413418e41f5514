// Package export dumps stored product links into a spreadsheet.
package export

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"basler/crawler/internal/domain"
)

const sheetName = "products_links"

var header = []any{"id", "product_link", "metadata"}

type ProductLinkLister interface {
	ListProductLinks(ctx context.Context) ([]domain.StoredProductLink, error)
}

// ExportProductLinks writes every stored product link to an xlsx file at path.
func ExportProductLinks(ctx context.Context, lister ProductLinkLister, path string) (int, error) {
	links, err := lister.ListProductLinks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list product links: %w", err)
	}

	if err := WriteProductLinks(path, links); err != nil {
		return 0, err
	}

	log.Infof("💾 Exported %d product links to %s", len(links), path)
	return len(links), nil
}

func WriteProductLinks(path string, links []domain.StoredProductLink) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, link := range links {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		row := []any{link.ID, link.ProductLink, link.Metadata}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", link.ID, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
