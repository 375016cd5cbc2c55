// Package sqlite persists the quote collection in a single-file SQLite
// database. The schema is a plain key-value table with two logical keys:
// the serialized quote collection and the selected category filter. The
// in-memory store owns the data; every save overwrites the mirrored
// value wholesale, so the table never needs row-level reconciliation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	// Pure-Go SQLite driver, registered for database/sql.
	_ "modernc.org/sqlite"

	"github.com/quotesync-io/quotesync/internal/domain"
)

const (
	keyQuotes = "quotes"
	keyFilter = "filter"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Mirror implements ports.QuoteMirror and ports.HealthChecker.
type Mirror struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens or creates the database at the given path and ensures the
// schema exists. Use ":memory:" for tests.
func New(path string, logger *slog.Logger) (*Mirror, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening mirror database: %w", err)
	}

	// SQLite permits one writer; a single pooled connection also keeps
	// ":memory:" databases from fragmenting across connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging mirror database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing mirror schema: %w", err)
	}

	logger.Info("quote mirror ready", slog.String("path", path))

	return &Mirror{db: db, logger: logger}, nil
}

// LoadQuotes reads the mirrored collection. A mirror that has never been
// written returns ok=false; a value that no longer parses is an error so
// the caller can fall back to seed data.
func (m *Mirror) LoadQuotes(ctx context.Context) ([]domain.QuoteRecord, bool, error) {
	value, ok, err := m.load(ctx, keyQuotes)
	if err != nil || !ok {
		return nil, false, err
	}

	var records []domain.QuoteRecord
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		return nil, false, fmt.Errorf("decoding mirrored quotes: %w", err)
	}

	return records, true, nil
}

// SaveQuotes overwrites the mirrored collection.
func (m *Mirror) SaveQuotes(ctx context.Context, records []domain.QuoteRecord) error {
	value, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding quotes for mirror: %w", err)
	}

	return m.save(ctx, keyQuotes, string(value))
}

// LoadFilter reads the persisted category filter preference.
func (m *Mirror) LoadFilter(ctx context.Context) (string, error) {
	value, _, err := m.load(ctx, keyFilter)
	if err != nil {
		return "", err
	}

	return value, nil
}

// SaveFilter persists the category filter preference.
func (m *Mirror) SaveFilter(ctx context.Context, category string) error {
	return m.save(ctx, keyFilter, category)
}

// Close releases the database handle.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// Name implements ports.HealthChecker.
func (m *Mirror) Name() string { return "sqlite-mirror" }

// Check implements ports.HealthChecker.
func (m *Mirror) Check(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return domain.NewUnavailableError("sqlite mirror", err.Error())
	}

	return nil
}

func (m *Mirror) load(ctx context.Context, key string) (string, bool, error) {
	var value string

	err := m.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("reading mirror key %q: %w", key, err)
	}

	return value, true, nil
}

func (m *Mirror) save(ctx context.Context, key, value string) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing mirror key %q: %w", key, err)
	}

	return nil
}
