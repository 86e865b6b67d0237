// internal/models/product.go
package models

import "time"

// Product is the unit being ranked. Category is optional; a product without
// a category never enters a ranking run.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// HasCategory reports whether the product is assigned to a ranking category.
func (p Product) HasCategory() bool {
	return p.Category != ""
}

// SurveyResponse is one submitted survey for a product. Answers are keyed by
// question key and hold either a string (free text) or a number (ratings).
type SurveyResponse struct {
	ID          string                 `json:"id"`
	ProductID   string                 `json:"productId"`
	SubmittedAt time.Time              `json:"submittedAt"`
	Answers     map[string]interface{} `json:"answers"`
}
