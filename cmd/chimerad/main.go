// Command chimerad serves the generation API and scene snapshots for the
// chimera client.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"chimera/server"
)

func main() {
	addr := flag.String("addr", ":5001", "listen address")
	dataDir := flag.String("data", "data", "directory for the snapshot database and generated images")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		logger.Fatal("OPENROUTER_API_KEY is not set")
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		logger.Fatal("create data dir", zap.Error(err))
	}
	snaps, err := server.OpenSnapshotStore(filepath.Join(*dataDir, "snapshots.db"))
	if err != nil {
		logger.Fatal("open snapshot store", zap.Error(err))
	}
	defer snaps.Close()

	srv, err := server.New(server.Config{Addr: *addr, DataDir: *dataDir},
		server.NewStudio(apiKey, logger), snaps, logger)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}
