package entity

import "time"

// Product is a catalogued good that marks are ordered for
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	GTIN     string `json:"gtin"`
	Brand    string `json:"brand"`
	Category string `json:"category"`
	Registry string `json:"registry"`
}

// Mark is a batch of serialized codes ordered for one product
type Mark struct {
	ID        string     `json:"id"`
	Product   Product    `json:"product"`
	Status    string     `json:"status"`
	Quantity  int        `json:"quantity"`
	Codes     []MarkCode `json:"codes"`
	CreatedAt time.Time  `json:"created_at"`
}

// MarkCode is a single serialized code within a mark
type MarkCode struct {
	Code   string `json:"code"`
	Status string `json:"status"`
}
