package task

import (
	"encoding/json"

	"basler/crawler/internal/domain"
)

// ProductLinkTask announces a newly stored product link to downstream page workers.
type ProductLinkTask struct {
	ProductLink string         `json:"product_link"`
	Lineage     domain.Lineage `json:"metadata"`
	RunID       string         `json:"run_id"`
}

func (t *ProductLinkTask) TaskType() string {
	return "ProductLinkTask"
}

func (t *ProductLinkTask) TaskValue() ([]byte, error) {
	return json.Marshal(t)
}
