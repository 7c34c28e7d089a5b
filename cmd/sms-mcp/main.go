package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/beaconcdp/beacon/config"
	"github.com/beaconcdp/beacon/internal/mcp"
	"github.com/beaconcdp/beacon/internal/messaging"
)

// sms-mcp exposes the SMS vendor client as MCP tools over stdio, so
// agent runtimes can send and inspect messages.
func main() {
	// The protocol owns stdout; diagnostics go to stderr.
	log.SetOutput(os.Stderr)

	cfg := config.Load()
	if cfg.Messaging.AccountSID == "" || cfg.Messaging.AuthToken == "" {
		log.Fatal("SMS_ACCOUNT_SID and SMS_AUTH_TOKEN environment variables are required")
	}

	client := messaging.NewClient(&cfg.Messaging)
	server := mcp.NewServer(client, cfg.Messaging.FromNumber, os.Stdin, os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		log.Fatalf("server error: %v", err)
	}
}
