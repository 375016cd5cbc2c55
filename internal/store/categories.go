package store

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/quotesync-io/quotesync/internal/domain"
)

// collator gives locale-aware lexicographic ordering for the category
// index. The index is derived state: recomputed from the collection,
// never persisted.
var collator = collate.New(language.Und, collate.IgnoreCase)

// Categories returns the category index: the synthetic "all"
// pseudo-category followed by the distinct non-empty categories present,
// in locale-aware order.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.categoriesLocked()
}

func (s *Store) categoriesLocked() []string {
	seen := make(map[string]struct{}, len(s.quotes))

	distinct := make([]string, 0, len(s.quotes))
	for _, q := range s.quotes {
		if q.Category == "" {
			continue
		}
		if _, ok := seen[q.Category]; ok {
			continue
		}

		seen[q.Category] = struct{}{}
		distinct = append(distinct, q.Category)
	}

	collator.SortStrings(distinct)

	return append([]string{AllCategories}, distinct...)
}

// SelectedFilter returns the persisted category preference. A preference
// naming a category no longer present in the index falls back to "all"
// transparently.
func (s *Store) SelectedFilter(ctx context.Context) string {
	selected, err := s.mirror.LoadFilter(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "filter preference unreadable", slog.Any("error", err))
		return AllCategories
	}

	if selected == "" || selected == AllCategories {
		return AllCategories
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range s.quotes {
		if q.Category == selected {
			return selected
		}
	}

	return AllCategories
}

// SetFilter persists the category preference. The category must be "all"
// or a member of the current index.
func (s *Store) SetFilter(ctx context.Context, category string) error {
	if category == "" {
		return domain.NewValidationError("category", "cannot be empty")
	}

	if category != AllCategories {
		s.mu.Lock()
		known := slices.Contains(s.categoriesLocked(), category)
		s.mu.Unlock()

		if !known {
			return domain.NewNotFoundError("category", category)
		}
	}

	if err := s.mirror.SaveFilter(ctx, category); err != nil {
		return fmt.Errorf("saving filter preference: %w", err)
	}

	s.logger.InfoContext(ctx, "filter changed", slog.String("category", category))

	return nil
}
