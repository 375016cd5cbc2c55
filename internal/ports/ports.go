// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application
// layer to depend on abstractions rather than concrete implementations.
//
// Port design principles:
//   - Context as first parameter for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, ...)
package ports

import (
	"context"

	"github.com/quotesync-io/quotesync/internal/domain"
)

// QuoteMirror is the persistent key-value mirror of the quote store.
// It is a serialized mirror, not a second owner: the in-memory store is
// the source of truth and every save overwrites the mirrored collection
// wholesale. Two logical keys exist: the full quote collection and the
// selected category filter.
type QuoteMirror interface {
	// LoadQuotes reads the mirrored collection.
	// A missing mirror returns (nil, false, nil); a corrupted one is
	// reported as an error so the caller can fall back to seed data.
	LoadQuotes(ctx context.Context) (records []domain.QuoteRecord, ok bool, err error)

	// SaveQuotes overwrites the mirrored collection with the given records.
	SaveQuotes(ctx context.Context, records []domain.QuoteRecord) error

	// LoadFilter reads the persisted category filter preference.
	// Returns ("", nil) when no preference has been saved.
	LoadFilter(ctx context.Context) (string, error)

	// SaveFilter persists the category filter preference.
	SaveFilter(ctx context.Context, category string) error
}

// RemoteSource is the mock remote collaborator of the sync engine.
// Pulled candidates carry Source=server and a local arrival timestamp:
// the remote provides no authoritative timestamps, so last-writer-wins
// can only be approximated. The write side accepts arbitrary payloads and
// does not echo back identities usable for future merges.
type RemoteSource interface {
	// FetchBatch pulls a bounded batch of remote items translated to
	// quote record candidates. Returns domain.ErrUnavailable when the
	// remote cannot be reached.
	FetchBatch(ctx context.Context) ([]domain.QuoteRecord, error)

	// Push sends one locally-sourced record to the remote sink.
	// Best effort: the remote acknowledges nothing useful and failures
	// carry no retry obligation.
	Push(ctx context.Context, record domain.QuoteRecord) error
}
