// Package store owns the quote collection. The in-memory slice is the
// single source of truth; a persistent mirror (ports.QuoteMirror) is
// overwritten wholesale after every mutation so storage and memory never
// diverge.
//
// All access goes through a single mutex. The original design relied on a
// cooperatively-scheduled runtime for its effective serialization; the
// mutex restores that guarantee on a truly concurrent runtime. This is an
// added guarantee, not a behavior change.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quotesync-io/quotesync/internal/domain"
	"github.com/quotesync-io/quotesync/internal/ports"
)

// AllCategories is the synthetic pseudo-category representing the
// unfiltered view. It always leads the category index.
const AllCategories = "all"

// Store is the owned, mutex-guarded quote collection.
type Store struct {
	mu     sync.Mutex
	mirror ports.QuoteMirror
	logger *slog.Logger

	quotes []domain.QuoteRecord

	// lastViewed is the session-scoped hint of the record last shown.
	// Deliberately not mirrored: it dies with the process.
	lastViewed string

	now   func() time.Time
	newID func() string
}

// Config contains the store dependencies.
type Config struct {
	// Mirror is the persistent key-value mirror. Required.
	Mirror ports.QuoteMirror

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time

	// NewID overrides ID generation, for tests.
	NewID func() string
}

// New creates a store. Call Load before serving reads.
func New(cfg Config) *Store {
	if cfg.Mirror == nil {
		panic("store: Mirror is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &Store{
		mirror: cfg.Mirror,
		logger: logger.With(slog.String("component", "store.Store")),
		now:    now,
		newID:  newID,
	}
}

// Load reads the persisted mirror into memory. If the mirror is absent,
// malformed, or empty after sanitation, the store seeds the built-in
// example records and persists them.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok, err := s.mirror.LoadQuotes(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "mirror unreadable, falling back to seed data",
			slog.Any("error", err),
		)
	}

	if err == nil && ok {
		clean := domain.Sanitize(records, s.nowMillis(), s.newID)
		if len(clean) > 0 {
			s.quotes = clean
			s.logger.InfoContext(ctx, "loaded quotes from mirror",
				slog.Int("count", len(clean)),
				slog.Int("dropped", len(records)-len(clean)),
			)

			return nil
		}
	}

	s.quotes = seedQuotes(s.nowMillis(), s.newID)
	s.logger.InfoContext(ctx, "seeded built-in quotes", slog.Int("count", len(s.quotes)))

	if err := s.saveLocked(ctx); err != nil {
		return fmt.Errorf("persisting seed data: %w", err)
	}

	return nil
}

// Add creates a record from user input. Empty fields after trimming are a
// validation error; an existing normalized (text, category) pair is a
// conflict. On success the record is appended and the mirror rewritten.
func (s *Store) Add(ctx context.Context, text, category string) (domain.QuoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.addLocked(text, category)
	if err != nil {
		return domain.QuoteRecord{}, err
	}

	if err := s.saveLocked(ctx); err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("persisting after add: %w", err)
	}

	s.logger.InfoContext(ctx, "quote added",
		slog.String("quote_id", record.ID),
		slog.String("category", record.Category),
	)

	return record, nil
}

func (s *Store) addLocked(text, category string) (domain.QuoteRecord, error) {
	text = strings.TrimSpace(text)
	category = strings.TrimSpace(category)

	if text == "" {
		return domain.QuoteRecord{}, domain.NewValidationError("text", "cannot be empty")
	}

	if category == "" {
		return domain.QuoteRecord{}, domain.NewValidationError("category", "cannot be empty")
	}

	key := domain.NormalizedKey(text, category)
	for _, q := range s.quotes {
		if q.NormalizedKey() == key {
			return domain.QuoteRecord{}, domain.NewConflictError("quote", "duplicate text and category")
		}
	}

	record := domain.QuoteRecord{
		ID:        s.newID(),
		Text:      text,
		Category:  category,
		Source:    domain.SourceLocal,
		UpdatedAt: s.nowMillis(),
	}
	s.quotes = append(s.quotes, record)

	return record, nil
}

// Remove deletes the record with the given id. A missing id is a silent
// no-op, not an error; the mirror is rewritten either way.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, q := range s.quotes {
		if q.ID == id {
			s.quotes = append(s.quotes[:i], s.quotes[i+1:]...)
			s.logger.InfoContext(ctx, "quote removed", slog.String("quote_id", id))

			break
		}
	}

	if err := s.saveLocked(ctx); err != nil {
		return fmt.Errorf("persisting after remove: %w", err)
	}

	return nil
}

// Get returns the record with the given id, or domain.ErrNotFound.
func (s *Store) Get(id string) (domain.QuoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range s.quotes {
		if q.ID == id {
			return q, nil
		}
	}

	return domain.QuoteRecord{}, domain.NewNotFoundError("quote", id)
}

// List returns the records in the given category, or every record for
// the "all" pseudo-category or an empty filter.
func (s *Store) List(category string) []domain.QuoteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filteredLocked(category)
}

// Random returns a random record within the given category and records it
// as the session's last-viewed hint. Returns domain.ErrNotFound when the
// filtered pool is empty.
func (s *Store) Random(category string) (domain.QuoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool := s.filteredLocked(category)
	if len(pool) == 0 {
		return domain.QuoteRecord{}, domain.NewNotFoundError("quote", "")
	}

	record := pool[rand.IntN(len(pool))]
	s.lastViewed = record.ID

	return record, nil
}

// LastViewedOrRandom returns the record last shown in this session, or a
// random one within the category when the hint is unset or stale.
func (s *Store) LastViewedOrRandom(category string) (domain.QuoteRecord, error) {
	s.mu.Lock()

	if s.lastViewed != "" {
		for _, q := range s.filteredLocked(category) {
			if q.ID == s.lastViewed {
				s.mu.Unlock()
				return q, nil
			}
		}
	}

	s.mu.Unlock()

	return s.Random(category)
}

// MergeRemote reconciles pulled server candidates into the collection and
// rewrites the mirror regardless of whether anything changed.
func (s *Store) MergeRemote(ctx context.Context, incoming []domain.QuoteRecord) (domain.MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, result := domain.MergeRemote(s.quotes, incoming)
	s.quotes = merged

	if err := s.saveLocked(ctx); err != nil {
		return result, fmt.Errorf("persisting after merge: %w", err)
	}

	return result, nil
}

// Snapshot returns a copy of the full collection.
func (s *Store) Snapshot() []domain.QuoteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.QuoteRecord, len(s.quotes))
	copy(out, s.quotes)

	return out
}

// LocalRecords returns a copy of the records flagged Source=local,
// the push set of a sync cycle.
func (s *Store) LocalRecords() []domain.QuoteRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.QuoteRecord
	for _, q := range s.quotes {
		if q.Source == domain.SourceLocal {
			out = append(out, q)
		}
	}

	return out
}

// Count returns the collection size.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.quotes)
}

// filteredLocked returns records matching the category. Callers hold mu.
func (s *Store) filteredLocked(category string) []domain.QuoteRecord {
	if category == "" || category == AllCategories {
		out := make([]domain.QuoteRecord, len(s.quotes))
		copy(out, s.quotes)

		return out
	}

	var out []domain.QuoteRecord
	for _, q := range s.quotes {
		if q.Category == category {
			out = append(out, q)
		}
	}

	return out
}

// saveLocked rewrites the mirror from the in-memory collection.
// Callers hold mu.
func (s *Store) saveLocked(ctx context.Context) error {
	if err := s.mirror.SaveQuotes(ctx, s.quotes); err != nil {
		return fmt.Errorf("saving quotes to mirror: %w", err)
	}

	return nil
}

func (s *Store) nowMillis() int64 {
	return s.now().UnixMilli()
}

