package store

import "github.com/quotesync-io/quotesync/internal/domain"

// seedQuotes returns the built-in example records used when the mirror is
// absent, malformed, or empty after sanitation.
func seedQuotes(nowMillis int64, newID func() string) []domain.QuoteRecord {
	seeds := []struct {
		text     string
		category string
	}{
		{"The only limit to our realization of tomorrow is our doubts of today.", "Motivation"},
		{"In the middle of every difficulty lies opportunity.", "Wisdom"},
		{"Happiness depends upon ourselves.", "Philosophy"},
	}

	records := make([]domain.QuoteRecord, 0, len(seeds))
	for _, s := range seeds {
		records = append(records, domain.QuoteRecord{
			ID:        newID(),
			Text:      s.text,
			Category:  s.category,
			Source:    domain.SourceLocal,
			UpdatedAt: nowMillis,
		})
	}

	return records
}
