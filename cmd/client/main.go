package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL" default:"ws://localhost:8765/ws"`
	Name      string `envconfig:"CHAT_NAME" required:"true"`
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the connection lifecycle: dial, announce the display name,
// then pump stdin lines up and server lines down until either side stops.
func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.ServerURL, err)
	}
	defer func() { _ = ws.Close() }()

	// First message is the display name, no framing.
	if err := ws.WriteMessage(websocket.TextMessage, []byte(config.Name)); err != nil {
		return exitRuntime, fmt.Errorf("handshake failed: %w", err)
	}

	color.Green.Printf(">>> Connected to %s as %s (Ctrl+C to quit)\n", config.ServerURL, config.Name)

	// Server -> terminal.
	go func() {
		for {
			_, payload, err := ws.ReadMessage()
			if err != nil {
				stop()
				return
			}
			printLine(string(payload))
		}
	}()

	// Terminal -> server.
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			if line == "" {
				continue
			}
			if err := ws.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				return exitRuntime, fmt.Errorf("send failed: %w", err)
			}
		}
	}
}

func printLine(line string) {
	switch {
	case strings.HasPrefix(line, "[online users]"):
		color.Green.Println(line)
	case strings.HasPrefix(line, "[private]"), strings.HasPrefix(line, "[->"):
		color.Magenta.Println(line)
	case strings.HasPrefix(line, "usage:"), strings.HasPrefix(line, "user "):
		color.Yellow.Println(line)
	default:
		fmt.Println(line)
	}
}
