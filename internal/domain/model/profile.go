// Package model contains domain models passed between layers.
package model

// Profile is the composed record returned by the profile endpoint.
// It is built per request and never stored.
type Profile struct {
	Name   string   `json:"name"`
	Age    uint8    `json:"age"`    // whole years, linear day-count approximation
	Phones []string `json:"phones"` // input order, empty segments kept
}
