package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/quotesync-io/quotesync/internal/domain"
)

// Export serializes the full collection to an indented JSON document.
// Pure read: no mutation, no mirror write.
func (s *Store) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.quotes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export document: %w", err)
	}

	return data, nil
}

// importEnvelope accepts the wrapped document form {"quotes": [...]}.
type importEnvelope struct {
	Quotes json.RawMessage `json:"quotes"`
}

// importRecord is the lenient per-record shape of an import document.
// Fields of the wrong JSON type drop the record rather than failing the
// whole document; unknown fields are ignored.
type importRecord struct {
	ID        any `json:"id"`
	Text      any `json:"text"`
	Category  any `json:"category"`
	Source    any `json:"source"`
	UpdatedAt any `json:"updatedAt"`
}

// Import merges a JSON document into the collection. The document is
// either a bare array of records or an object wrapping them under
// "quotes". Candidates pass the same sanitation as Load and the same
// de-duplication key as Add, checked against the current collection plus
// earlier candidates of the same batch. All additions land in a single
// mirror write. A malformed top-level shape is a hard failure with
// nothing imported.
func (s *Store) Import(ctx context.Context, document []byte) (int, error) {
	candidates, err := decodeImportDocument(document)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clean := domain.Sanitize(candidates, s.nowMillis(), s.newID)

	seen := make(map[string]struct{}, len(s.quotes)+len(clean))
	for _, q := range s.quotes {
		seen[q.NormalizedKey()] = struct{}{}
	}

	added := 0
	for _, c := range clean {
		key := c.NormalizedKey()
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		s.quotes = append(s.quotes, c)
		added++
	}

	if err := s.saveLocked(ctx); err != nil {
		return 0, fmt.Errorf("persisting after import: %w", err)
	}

	s.logger.InfoContext(ctx, "import completed",
		slog.Int("imported", added),
		slog.Int("skipped", len(clean)-added),
	)

	return added, nil
}

// decodeImportDocument parses the document into record candidates.
func decodeImportDocument(document []byte) ([]domain.QuoteRecord, error) {
	raw := json.RawMessage(document)

	// Object form: unwrap the named array field.
	var envelope importEnvelope
	if err := json.Unmarshal(document, &envelope); err == nil && envelope.Quotes != nil {
		raw = envelope.Quotes
	}

	var records []importRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, domain.NewValidationError("document", `must be an array of quotes or {"quotes": [...]}`)
	}

	candidates := make([]domain.QuoteRecord, 0, len(records))
	for _, r := range records {
		text, okText := r.Text.(string)
		category, okCategory := r.Category.(string)
		if !okText || !okCategory {
			continue
		}

		candidate := domain.QuoteRecord{
			Text:     text,
			Category: category,
		}

		switch id := r.ID.(type) {
		case string:
			candidate.ID = id
		case float64:
			// Numeric ids survive as their decimal form.
			candidate.ID = strconv.FormatInt(int64(id), 10)
		}

		if src, ok := r.Source.(string); ok && domain.Source(src) == domain.SourceServer {
			candidate.Source = domain.SourceServer
		}

		if ts, ok := r.UpdatedAt.(float64); ok && ts > 0 {
			candidate.UpdatedAt = int64(ts)
		}

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}
