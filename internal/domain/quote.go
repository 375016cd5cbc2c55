// Package domain contains core business entities and rules.
package domain

import "strings"

// Source identifies where a quote record originated.
// It is provenance, not ownership: server-sourced records are still
// owned and mutated by the local store.
type Source string

const (
	// SourceLocal marks records created by user input.
	SourceLocal Source = "local"

	// SourceServer marks records created or last touched by a sync pull.
	SourceServer Source = "server"
)

// QuoteRecord is the sole entity: a quote with its category label,
// provenance, and last-update timestamp.
type QuoteRecord struct {
	// ID is an opaque unique identifier, stable across sessions.
	ID string `json:"id"`

	// Text is the quote body. Never empty after sanitation.
	Text string `json:"text"`

	// Category is a free-form label. Never empty after sanitation.
	Category string `json:"category"`

	// Source records provenance.
	Source Source `json:"source"`

	// UpdatedAt is a logical timestamp in unix milliseconds,
	// used only for conflict tie-breaking during merge.
	UpdatedAt int64 `json:"updatedAt"`
}

// NormalizedKey returns the lowercase, trimmed text::category pairing
// used for de-duplication. Distinct from ID.
func (q QuoteRecord) NormalizedKey() string {
	return NormalizedKey(q.Text, q.Category)
}

// NormalizedKey builds the de-duplication key from raw text and category.
func NormalizedKey(text, category string) string {
	return strings.ToLower(strings.TrimSpace(text)) + "::" + strings.ToLower(strings.TrimSpace(category))
}

// MergeKey identifies a record during remote reconciliation:
// the ID (empty allowed) paired with the lowercased text.
// A reconciliation match requires both to agree.
func (q QuoteRecord) MergeKey() string {
	return q.ID + "::" + strings.ToLower(q.Text)
}

// Sanitize validates and normalizes a batch of candidate records.
// Records with empty trimmed text or category are dropped, never stored.
// Missing IDs are assigned via newID, unknown sources coerced to local,
// and a non-positive UpdatedAt defaults to nowMillis.
//
// The domain stays free of infrastructure: callers inject ID generation
// and the clock.
func Sanitize(candidates []QuoteRecord, nowMillis int64, newID func() string) []QuoteRecord {
	clean := make([]QuoteRecord, 0, len(candidates))

	for _, c := range candidates {
		c.Text = strings.TrimSpace(c.Text)
		c.Category = strings.TrimSpace(c.Category)

		if c.Text == "" || c.Category == "" {
			continue
		}

		if c.ID == "" {
			c.ID = newID()
		}

		if c.Source != SourceServer {
			c.Source = SourceLocal
		}

		if c.UpdatedAt <= 0 {
			c.UpdatedAt = nowMillis
		}

		clean = append(clean, c)
	}

	return clean
}
