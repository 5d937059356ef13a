package runtime

import (
	"chat-relay/domain"
	"sync"
)

// WriteBackQueue buffers records awaiting durable write, decoupling the
// routing hot path from storage latency. It is unbounded and
// multi-producer; the single consumer is the flush worker.
//
// A channel does not fit here: the consumer needs "take everything queued
// right now" without blocking, and producers must never block, so the
// queue is a mutex-guarded slice that DrainAll swaps out wholesale.
type WriteBackQueue struct {
	mu      sync.Mutex
	pending []domain.Message
}

func NewWriteBackQueue() *WriteBackQueue {
	return &WriteBackQueue{}
}

// Enqueue appends a record. Never blocks on storage I/O.
func (q *WriteBackQueue) Enqueue(m domain.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, m)
}

// DrainAll removes and returns everything queued at this instant,
// preserving enqueue order within the returned batch.
func (q *WriteBackQueue) DrainAll() []domain.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.pending
	q.pending = nil
	return batch
}

func (q *WriteBackQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
