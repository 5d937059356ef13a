package main

import (
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/transport"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. Keeping the logic out of main ensures every
// defer (database close, final flush) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := observability.LoggerFromLevel(config.LogLevel)

	// 2. Database (BadgerDB). A failure here is fatal to process start.
	db, err := badger.Open(badger.DefaultOptions(config.DatabasePath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	store := repositories.NewMessageStore(db, log)
	if err := store.EnsureSchema(); err != nil {
		return fmt.Errorf("schema init failed: %w", err)
	}
	defer func() { _ = store.Close() }()

	// 3. Live components & persistence pipeline
	stats := observability.NewDeliveryStats()
	registry := runtime.NewRegistry()
	router := runtime.NewRouter(log, registry, stats)
	queue := runtime.NewWriteBackQueue()
	flusher := workers.NewFlushWorker(log, queue, store, stats, config.FlushInterval)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(flusher)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 5. WebSocket server
	server := transport.NewServer(log, registry, router, queue, store)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: server.Handler()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting chat relay", "address", address)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 7. Final Cleanup. Closing the http server tears down live
	// websockets, which unblocks every session's read loop; the
	// supervisor's shutdown path gives the flush worker a last drain.
	_ = httpServer.Close()
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly", "stats", stats.Snapshot())

	return nil
}
