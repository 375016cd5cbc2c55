package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quotesync-io/quotesync/internal/domain"
	"github.com/quotesync-io/quotesync/internal/ports"
	"github.com/quotesync-io/quotesync/internal/store"
)

const (
	// DefaultSyncInterval is the periodic cycle spacing when no interval
	// is configured.
	DefaultSyncInterval = 30 * time.Second

	// DefaultPushConcurrency bounds parallel pushes within one cycle.
	DefaultPushConcurrency = 4
)

// CycleResult summarizes one pull/merge/push cycle.
type CycleResult struct {
	Added      int  `json:"added"`
	Updated    int  `json:"updated"`
	Pushed     int  `json:"pushed"`
	PushFailed int  `json:"pushFailed"`
	Offline    bool `json:"offline"`
}

// SyncStatus is the queryable state of the engine: the outcome of the
// most recent cycle plus lifetime counters.
type SyncStatus struct {
	Cycles     uint64      `json:"cycles"`
	LastSyncAt time.Time   `json:"lastSyncAt"`
	LastResult CycleResult `json:"lastResult"`
	LastError  string      `json:"lastError,omitempty"`
	Offline    bool        `json:"offline"`
}

// SyncEngineConfig contains the engine dependencies.
type SyncEngineConfig struct {
	Store  *store.Store
	Remote ports.RemoteSource
	Logger *slog.Logger

	// Interval between periodic cycles. Defaults to DefaultSyncInterval.
	Interval time.Duration

	// PushConcurrency bounds parallel pushes. Defaults to
	// DefaultPushConcurrency.
	PushConcurrency int
}

// SyncEngine reconciles the store with the remote source: pull a batch,
// merge it, then push every locally-authored record. Cycles run once at
// startup, on a fixed interval, and on demand via SyncNow. Cycles are
// not serialized against each other; the store's own locking keeps
// concurrent cycles safe.
type SyncEngine struct {
	store     *store.Store
	remote    ports.RemoteSource
	logger    *slog.Logger
	interval  time.Duration
	pushLimit int

	mu     sync.Mutex
	status SyncStatus

	stop     chan struct{}
	done     chan struct{}
	startOne sync.Once
	stopOne  sync.Once
}

// NewSyncEngine creates a sync engine. Store and Remote are required.
func NewSyncEngine(cfg SyncEngineConfig) *SyncEngine {
	if cfg.Store == nil || cfg.Remote == nil {
		panic("app: SyncEngine requires a Store and a Remote")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultSyncInterval
	}

	pushLimit := cfg.PushConcurrency
	if pushLimit <= 0 {
		pushLimit = DefaultPushConcurrency
	}

	return &SyncEngine{
		store:     cfg.Store,
		remote:    cfg.Remote,
		logger:    logger,
		interval:  interval,
		pushLimit: pushLimit,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the background loop: one immediate cycle, then one per
// interval until Stop is called or ctx is canceled. Non-blocking.
func (e *SyncEngine) Start(ctx context.Context) {
	e.startOne.Do(func() {
		go e.run(ctx)
	})
}

// Stop terminates the background loop and waits for it to exit. A cycle
// already in flight is allowed to finish.
func (e *SyncEngine) Stop() {
	e.stopOne.Do(func() { close(e.stop) })
	<-e.done
}

func (e *SyncEngine) run(ctx context.Context) {
	defer close(e.done)

	e.logger.InfoContext(ctx, "sync engine started",
		slog.Duration("interval", e.interval),
	)

	if _, err := e.SyncNow(ctx); err != nil {
		e.logger.WarnContext(ctx, "startup sync failed", slog.Any("error", err))
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := e.SyncNow(ctx); err != nil {
				e.logger.WarnContext(ctx, "periodic sync failed", slog.Any("error", err))
			}
		case <-e.stop:
			e.logger.InfoContext(ctx, "sync engine stopped")
			return
		case <-ctx.Done():
			e.logger.InfoContext(ctx, "sync engine context canceled")
			return
		}
	}
}

// SyncNow runs one full cycle synchronously and returns its outcome.
// A pull failure marks the engine offline and leaves the store
// untouched; push failures are logged per item and never fail the
// cycle.
func (e *SyncEngine) SyncNow(ctx context.Context) (CycleResult, error) {
	candidates, err := e.remote.FetchBatch(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "pull failed, working offline", slog.Any("error", err))
		syncCyclesTotal.WithLabelValues(outcomeOffline).Inc()
		e.recordCycle(CycleResult{Offline: true}, err)

		return CycleResult{Offline: true}, fmt.Errorf("pulling remote quotes: %w", err)
	}

	merge, err := e.store.MergeRemote(ctx, candidates)
	if err != nil {
		syncCyclesTotal.WithLabelValues(outcomeError).Inc()
		e.recordCycle(CycleResult{Added: merge.Added, Updated: merge.Updated}, err)

		return CycleResult{}, fmt.Errorf("merging remote quotes: %w", err)
	}

	syncMergedTotal.WithLabelValues(actionAdded).Add(float64(merge.Added))
	syncMergedTotal.WithLabelValues(actionUpdated).Add(float64(merge.Updated))

	pushed, failed := e.pushLocals(ctx)

	result := CycleResult{
		Added:      merge.Added,
		Updated:    merge.Updated,
		Pushed:     pushed,
		PushFailed: failed,
	}

	syncCyclesTotal.WithLabelValues(outcomeSuccess).Inc()
	e.recordCycle(result, nil)

	e.logger.InfoContext(ctx, "sync cycle completed",
		slog.Int("added", result.Added),
		slog.Int("updated", result.Updated),
		slog.Int("pushed", result.Pushed),
		slog.Int("push_failed", result.PushFailed),
	)

	return result, nil
}

// pushLocals sends every locally-authored record to the remote sink in
// parallel. Best effort: failures are logged and counted, nothing else.
func (e *SyncEngine) pushLocals(ctx context.Context) (pushed, failed int) {
	locals := e.store.LocalRecords()
	if len(locals) == 0 {
		return 0, 0
	}

	fns := make([]func(context.Context) (string, error), len(locals))
	for i, record := range locals {
		fns[i] = func(ctx context.Context) (string, error) {
			return record.ID, e.remote.Push(ctx, record)
		}
	}

	for _, r := range ParallelPartial(ctx, e.pushLimit, fns...) {
		if r.Err != nil {
			failed++
			syncPushTotal.WithLabelValues(outcomeFailure).Inc()
			e.logger.WarnContext(ctx, "push failed",
				slog.String("quote_id", r.Value),
				slog.Any("error", r.Err),
			)

			continue
		}

		pushed++
		syncPushTotal.WithLabelValues(outcomeSuccess).Inc()
	}

	return pushed, failed
}

// Status returns a copy of the engine state.
func (e *SyncEngine) Status() SyncStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.status
}

func (e *SyncEngine) recordCycle(result CycleResult, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.status.Cycles++
	e.status.LastSyncAt = time.Now().UTC()
	e.status.LastResult = result
	e.status.Offline = result.Offline

	e.status.LastError = ""
	if err != nil {
		e.status.LastError = err.Error()
	}
}

// Name implements ports.HealthChecker.
func (e *SyncEngine) Name() string { return "sync-engine" }

// Check implements ports.HealthChecker: the engine is degraded while the
// last pull marked it offline.
func (e *SyncEngine) Check(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status.Offline {
		return domain.NewUnavailableError("remote source", "last pull failed")
	}

	return nil
}
