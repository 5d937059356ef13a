package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
	"context"
	"log/slog"
	"time"
)

// FlushWorker is the single consumer of the write-back queue. On a fixed
// cadence it drains whatever is queued at that instant and appends the
// whole batch to the store in one call; empty drains produce no store
// call. A failed append keeps the batch in memory and retries it, ahead
// of newer rows, on the next tick, so a storage fault delays durability
// but never discards data.
//
// Pending rows are lost if the process dies before the next tick; the
// shutdown path mitigates this with one final Flush.
type FlushWorker struct {
	log      *slog.Logger
	queue    contract.IQueue
	store    contract.IMessageStore
	stats    *observability.DeliveryStats
	interval time.Duration
	retained []domain.Message // batch kept back after a failed append
}

func NewFlushWorker(log *slog.Logger, queue contract.IQueue,
	store contract.IMessageStore, stats *observability.DeliveryStats,
	interval time.Duration) *FlushWorker {
	return &FlushWorker{
		log:      log,
		queue:    queue,
		store:    store,
		stats:    stats,
		interval: interval,
	}
}

func (w *FlushWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// Last chance for rows enqueued since the previous tick.
			w.Flush()
			return nil
		case <-ticker.C:
			w.Flush()
		}
	}
}

// Flush performs one drain-and-append cycle. Only ever called from the
// worker goroutine (and from the shutdown path after the worker stopped),
// so retained needs no locking.
func (w *FlushWorker) Flush() {
	batch := append(w.retained, w.queue.DrainAll()...)
	if len(batch) == 0 {
		return
	}
	if err := w.store.AppendBatch(batch); err != nil {
		w.log.Error("flush failed, batch retained", "rows", len(batch), "error", err)
		w.retained = batch
		return
	}
	w.retained = nil
	w.stats.Batches.Add(1)
	w.stats.RowsFlushed.Add(uint64(len(batch)))
	w.log.Debug("batch flushed", "rows", len(batch))
}
