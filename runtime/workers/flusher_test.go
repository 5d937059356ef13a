package workers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/mocks"
	"chat-relay/observability"
	"chat-relay/runtime"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestFlushWorker_Flushes_Queued_Rows_Once(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIMessageStore(ctrl)
	queue := runtime.NewWriteBackQueue()
	stats := observability.NewDeliveryStats()
	worker := NewFlushWorker(slog.Default(), queue, store, stats, time.Second)

	queue.Enqueue(domain.NewBroadcast("alice", "one"))
	queue.Enqueue(domain.NewWhisper("alice", "bob", "two"))

	var flushed []domain.Message
	store.EXPECT().AppendBatch(gomock.Any()).DoAndReturn(func(rows []domain.Message) error {
		flushed = rows
		return nil
	}).Times(1)

	worker.Flush()

	req.Len(flushed, 2)
	req.Equal("one", flushed[0].Body)
	req.Equal("two", flushed[1].Body)
	req.Equal(uint64(1), stats.Batches.Load())
	req.Equal(uint64(2), stats.RowsFlushed.Load())

	// A second cycle with nothing queued must not touch the store;
	// gomock fails the test on any unexpected AppendBatch call.
	worker.Flush()
}

func TestFlushWorker_Retains_Batch_On_Store_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIMessageStore(ctrl)
	queue := runtime.NewWriteBackQueue()
	worker := NewFlushWorker(slog.Default(), queue, store, observability.NewDeliveryStats(), time.Second)

	first := domain.NewBroadcast("alice", "first")
	second := domain.NewBroadcast("bob", "second")

	var retried []domain.Message
	gomock.InOrder(
		store.EXPECT().AppendBatch(gomock.Any()).Return(fmt.Errorf("disk on fire")).Times(1),
		store.EXPECT().AppendBatch(gomock.Any()).DoAndReturn(func(rows []domain.Message) error {
			retried = rows
			return nil
		}).Times(1),
	)

	// Given a flush that fails
	queue.Enqueue(first)
	worker.Flush()

	// When new rows arrive and the next cycle runs
	queue.Enqueue(second)
	worker.Flush()

	// Then the retained rows lead the retried batch, nothing was lost
	req.Equal([]domain.Message{first, second}, retried)
}

func TestFlushWorker_Run_Drains_On_Shutdown(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIMessageStore(ctrl)
	queue := runtime.NewWriteBackQueue()
	// Interval far beyond the test horizon: only the shutdown drain can
	// reach the store.
	worker := NewFlushWorker(slog.Default(), queue, store, observability.NewDeliveryStats(), time.Hour)

	queue.Enqueue(domain.NewBroadcast("alice", "pending"))
	store.EXPECT().AppendBatch(gomock.Any()).Return(nil).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.Fail("worker did not stop after context cancellation")
	}
}
