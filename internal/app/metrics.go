package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync engine counters, served through the /-/metrics endpoint.
var (
	syncCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotesync_sync_cycles_total",
		Help: "Completed sync cycles by outcome.",
	}, []string{"outcome"})

	syncMergedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotesync_sync_merged_quotes_total",
		Help: "Quotes added or updated by remote merges.",
	}, []string{"action"})

	syncPushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotesync_sync_pushes_total",
		Help: "Local quotes pushed to the remote by outcome.",
	}, []string{"outcome"})
)

const (
	outcomeSuccess = "success"
	outcomeOffline = "offline"
	outcomeError   = "error"
	outcomeFailure = "failure"

	actionAdded   = "added"
	actionUpdated = "updated"
)
