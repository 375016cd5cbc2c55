// Package acl implements the Anti-Corruption Layer pattern for the remote
// quote source. The adapter translates between the external posts API and
// domain quote records, protecting the domain from external model changes.
package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/quotesync-io/quotesync/internal/adapters/clients"
	"github.com/quotesync-io/quotesync/internal/domain"
	"github.com/quotesync-io/quotesync/internal/platform/logging"
)

// DefaultBatchLimit bounds a pull when no limit is configured.
const DefaultBatchLimit = 10

// remoteCategory is the category assigned to every pulled record: the
// posts API carries no category of its own.
const remoteCategory = "Server"

// PostSourceConfig contains configuration for the remote source adapter.
type PostSourceConfig struct {
	// Client is the resilient HTTP client. Its BaseURL should point at
	// the posts API root.
	Client *clients.Client

	// BatchLimit caps how many posts one pull requests.
	// Defaults to DefaultBatchLimit.
	BatchLimit int

	// Logger is the structured logger.
	Logger *slog.Logger

	// Now returns the current unix-millisecond timestamp for pulled
	// records. Defaults to the wall clock. The remote provides no
	// authoritative timestamps, so arrival time stands in.
	Now func() int64
}

// PostSource implements ports.RemoteSource against a JSONPlaceholder-style
// posts API: pulls translate posts to quote candidates, pushes serialize
// local quotes as posts. The API is a mock collaborator; pushed records
// are acknowledged but never readable back.
type PostSource struct {
	client     *clients.Client
	batchLimit int
	logger     *slog.Logger
	now        func() int64
}

// NewPostSource creates a remote source adapter.
// Panics if Client is nil.
func NewPostSource(cfg PostSourceConfig) *PostSource {
	if cfg.Client == nil {
		panic("PostSource: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := cfg.BatchLimit
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	now := cfg.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	return &PostSource{
		client:     cfg.Client,
		batchLimit: limit,
		logger:     logger,
		now:        now,
	}
}

// postResponse is the external DTO of the posts API.
// Internal type, never exposed outside the ACL.
type postResponse struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// postRequest is the payload of a pushed quote.
type postRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// FetchBatch pulls a bounded batch of posts and translates them to quote
// record candidates. Implements ports.RemoteSource.
func (s *PostSource) FetchBatch(ctx context.Context) ([]domain.QuoteRecord, error) {
	path := "/posts?_limit=" + strconv.Itoa(s.batchLimit)
	s.logger.Log(ctx, logging.LevelTrace, "starting pull", slog.String("path", path))

	resp, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, domain.NewUnavailableError("remote-source", err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, s.handleErrorResponse(resp)
	}

	var posts []postResponse
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, fmt.Errorf("decoding posts response: %w", err)
	}

	records := s.translateToDomain(posts)

	s.logger.DebugContext(ctx, "pulled remote batch",
		slog.Int("posts", len(posts)),
		slog.Int("candidates", len(records)),
	)

	return records, nil
}

// translateToDomain converts external posts to quote record candidates.
// Posts with no usable text are dropped here rather than polluting the
// store's sanitation path.
func (s *PostSource) translateToDomain(posts []postResponse) []domain.QuoteRecord {
	now := s.now()

	records := make([]domain.QuoteRecord, 0, len(posts))
	for _, p := range posts {
		text := strings.TrimSpace(p.Body)
		if text == "" {
			text = strings.TrimSpace(p.Title)
		}

		if text == "" {
			continue
		}

		records = append(records, domain.QuoteRecord{
			ID:        strconv.Itoa(p.ID),
			Text:      text,
			Category:  remoteCategory,
			Source:    domain.SourceServer,
			UpdatedAt: now,
		})
	}

	return records
}

// Push serializes one locally-authored quote as a post. The mock API
// echoes a synthetic id that cannot be correlated with later pulls, so
// the response body is discarded. Implements ports.RemoteSource.
func (s *PostSource) Push(ctx context.Context, record domain.QuoteRecord) error {
	payload, err := json.Marshal(postRequest{
		Title:  record.Category,
		Body:   record.Text,
		UserID: 1,
	})
	if err != nil {
		return fmt.Errorf("encoding push payload: %w", err)
	}

	resp, err := s.client.Post(ctx, "/posts", bytes.NewReader(payload))
	if err != nil {
		return domain.NewUnavailableError("remote-source", err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return s.handleErrorResponse(resp)
	}

	s.logger.Log(ctx, logging.LevelTrace, "pushed quote",
		slog.String("quote_id", record.ID),
		slog.Int("status", resp.StatusCode),
	)

	return nil
}

// handleErrorResponse converts HTTP error responses to domain errors.
func (s *PostSource) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	s.logger.Warn("remote API error",
		slog.Int("status_code", resp.StatusCode),
		slog.String("body", string(body)),
	)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return domain.NewUnavailableError("remote-source", fmt.Sprintf("HTTP %d", resp.StatusCode))
	default:
		return domain.NewUnavailableError("remote-source", fmt.Sprintf("unexpected HTTP %d", resp.StatusCode))
	}
}

// Name returns the health check name for this adapter.
// Implements ports.HealthChecker.
func (s *PostSource) Name() string {
	return "remote-source"
}

// Check verifies connectivity with a minimal pull.
// Implements ports.HealthChecker.
func (s *PostSource) Check(ctx context.Context) error {
	resp, err := s.client.Get(ctx, "/posts?_limit=1")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote API returned status %d", resp.StatusCode)
	}

	return nil
}
