// Package observability provides the process logger and lightweight
// delivery counters for the relay.
package observability

import (
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// LoggerFromLevel builds the process logger from a LOG_LEVEL value.
// Unknown values fall back to info instead of failing startup.
func LoggerFromLevel(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// DeliveryStats aggregates fan-out and flush outcomes.
// Counters are atomic so the router and the flush worker can bump them
// without coordination; readers only ever see a sampled snapshot.
type DeliveryStats struct {
	Delivered   atomic.Uint64
	Failed      atomic.Uint64
	Batches     atomic.Uint64
	RowsFlushed atomic.Uint64
}

func NewDeliveryStats() *DeliveryStats {
	return &DeliveryStats{}
}

func (s *DeliveryStats) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"delivered":    s.Delivered.Load(),
		"failed":       s.Failed.Load(),
		"batches":      s.Batches.Load(),
		"rows_flushed": s.RowsFlushed.Load(),
	}
}
