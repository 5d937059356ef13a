//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
	"reflect"

	"github.com/google/uuid"
)

// Conn is one live transport-level session. Implementations must allow
// concurrent WriteMessage calls; ReadMessage is only ever called from the
// session goroutine that owns the connection.
type Conn interface {
	ID() uuid.UUID
	ReadMessage() (string, error)
	WriteMessage(line string) error
	Close() error
}

// Entry pairs a registered connection with its display name.
type Entry struct {
	Conn Conn
	Name string
}

type IRegistry interface {
	Register(conn Conn, name string)
	Unregister(conn Conn)
	LookupByName(name string) (Conn, bool)
	Snapshot() []Entry
}

type IRouter interface {
	Broadcast(line string)
	NotifyPresence()
}

// IQueue buffers records awaiting durable write. Enqueue must never block
// on storage I/O; DrainAll takes whatever is queued at that instant.
type IQueue interface {
	Enqueue(m domain.Message)
	DrainAll() []domain.Message
}

// IMessageStore is the narrow persistence surface. AppendBatch assigns each
// row a strictly increasing sequence number consistent with call order and
// commits the whole batch or nothing; ReadAllOrdered returns every row ever
// appended, in sequence order.
type IMessageStore interface {
	EnsureSchema() error
	AppendBatch(rows []domain.Message) error
	ReadAllOrdered() ([]domain.Message, error)
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}
