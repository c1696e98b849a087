/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  The entity records in package record carry their wire-format JSON tags
  already, so responses serialize snapshots and stats reports directly.
  This file holds the remaining API-only shapes: error envelopes and the
  small wrappers that have no domain counterpart.

VALIDATION:
  Input validation lives in the record.Keeper; handlers only translate its
  errors to HTTP statuses.
*/
package api

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// PriceResponse carries a resolved pre-fill price.
type PriceResponse struct {
	Price float64 `json:"price"`
}

// ImportResponse reports the collection sizes accepted from a backup.
type ImportResponse struct {
	Cars      int `json:"cars"`
	WashTypes int `json:"washTypes"`
	Companies int `json:"companies"`
	Washes    int `json:"washes"`
	Expenses  int `json:"expenses"`
}

// CategoriesResponse lists the distinct expense categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
