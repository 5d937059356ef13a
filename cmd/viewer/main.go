package main

import (
	"chat-relay/repositories"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	DatabasePath string `env:"DATABASE_PATH,required=true"`
}

// The viewer dumps the durable message log in sequence order without
// touching the live relay.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if the relay holds the lock
	opts := badger.DefaultOptions(config.DatabasePath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	store := repositories.NewMessageStore(db, slog.Default())
	rows, err := store.ReadAllOrdered()
	if err != nil {
		log.Fatalf("Failed to read message log: %v", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Sender", "Receiver", "Body"})
	for i, row := range rows {
		table.Append([]string{strconv.Itoa(i + 1), row.Sender, row.Receiver, row.Body})
	}
	table.Render()
	fmt.Printf("%d message(s)\n", len(rows))
}
