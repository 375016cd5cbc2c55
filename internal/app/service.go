// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"log/slog"

	"github.com/quotesync-io/quotesync/internal/domain"
	"github.com/quotesync-io/quotesync/internal/store"
)

// QuoteService orchestrates quote use cases over the store. Handlers talk
// to the service, never to the store directly, so cross-cutting behavior
// (logging, future enrichment) lives in one place.
type QuoteService struct {
	store  *store.Store
	logger *slog.Logger
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Store  *store.Store
	Logger *slog.Logger
}

// NewQuoteService creates a new quote service with the provided dependencies.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteService{
		store:  cfg.Store,
		logger: logger,
	}
}

// RandomQuote returns a random quote within the given category and
// records it as the session's last-viewed hint.
func (s *QuoteService) RandomQuote(ctx context.Context, category string) (domain.QuoteRecord, error) {
	quote, err := s.store.Random(category)
	if err != nil {
		s.logger.InfoContext(ctx, "no quote available",
			slog.String("category", category),
		)

		return domain.QuoteRecord{}, err
	}

	return quote, nil
}

// CurrentQuote returns the last quote shown in this session, or a random
// one within the category when no hint is set.
func (s *QuoteService) CurrentQuote(ctx context.Context, category string) (domain.QuoteRecord, error) {
	return s.store.LastViewedOrRandom(category)
}

// GetQuote returns a single quote by id.
func (s *QuoteService) GetQuote(ctx context.Context, id string) (domain.QuoteRecord, error) {
	return s.store.Get(id)
}

// ListQuotes returns the quotes in the given category ("all" or empty
// for the whole collection).
func (s *QuoteService) ListQuotes(ctx context.Context, category string) []domain.QuoteRecord {
	return s.store.List(category)
}

// AddQuote creates a quote from user input and persists it.
func (s *QuoteService) AddQuote(ctx context.Context, text, category string) (domain.QuoteRecord, error) {
	quote, err := s.store.Add(ctx, text, category)
	if err != nil {
		s.logger.WarnContext(ctx, "quote rejected",
			slog.String("category", category),
			slog.Any("error", err),
		)

		return domain.QuoteRecord{}, err
	}

	return quote, nil
}

// DeleteQuote removes a quote by id. A missing id is not an error.
func (s *QuoteService) DeleteQuote(ctx context.Context, id string) error {
	return s.store.Remove(ctx, id)
}

// Categories returns the category index, "all" first.
func (s *QuoteService) Categories(ctx context.Context) []string {
	return s.store.Categories()
}

// SelectedFilter returns the persisted category filter preference.
func (s *QuoteService) SelectedFilter(ctx context.Context) string {
	return s.store.SelectedFilter(ctx)
}

// SetFilter persists the category filter preference.
func (s *QuoteService) SetFilter(ctx context.Context, category string) error {
	return s.store.SetFilter(ctx, category)
}

// ExportQuotes serializes the full collection to a JSON document.
func (s *QuoteService) ExportQuotes(ctx context.Context) ([]byte, error) {
	data, err := s.store.Export()
	if err != nil {
		s.logger.ErrorContext(ctx, "export failed", slog.Any("error", err))
		return nil, err
	}

	s.logger.InfoContext(ctx, "collection exported", slog.Int("count", s.store.Count()))

	return data, nil
}

// ImportQuotes merges a JSON document into the collection and returns
// how many records were added.
func (s *QuoteService) ImportQuotes(ctx context.Context, document []byte) (int, error) {
	added, err := s.store.Import(ctx, document)
	if err != nil {
		s.logger.WarnContext(ctx, "import rejected", slog.Any("error", err))
		return 0, err
	}

	return added, nil
}
