// Command lontod is the daemon entrypoint (C14): it wires configuration,
// storage, the watcher/controller, and the HTTP handler together, then
// owns graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tkw1536/lontod/pkg/config"
	"github.com/tkw1536/lontod/pkg/httpapi"
	"github.com/tkw1536/lontod/pkg/ingest"
	"github.com/tkw1536/lontod/pkg/store"
	"github.com/tkw1536/lontod/pkg/watch"
)

func main() {
	logger := log.New(os.Stderr, "lontod: ", log.LstdFlags)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "lontod: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	writer, err := store.OpenWriter(store.Dialect{Path: cfg.Database})
	if err != nil {
		return fmt.Errorf("open writer connection: %w", err)
	}
	defer writer.Close()

	readerSource, err := store.OpenReaderSource(store.Dialect{Path: cfg.Database}, 8)
	if err != nil {
		return fmt.Errorf("open reader pool: %w", err)
	}
	defer readerSource.Close()

	pool := store.NewPool(readerSource, 8)
	defer pool.Teardown()
	query := store.NewQuery(pool)

	controller := watch.New(writer, cfg.Paths, ingest.Options{
		LanguagePreference: []string{"en"},
	}, logger)

	if len(cfg.Paths) > 0 {
		logger.Printf("indexing %d path(s)", len(cfg.Paths))
		res, err := controller.IndexAndCommit()
		if err != nil {
			return fmt.Errorf("initial index: %w", err)
		}
		logger.Printf("indexed %d ontology file(s), %d failure(s)", len(res.Indexed), len(res.Failed))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Watch {
		if err := controller.StartWatching(ctx); err != nil {
			return fmt.Errorf("start watching: %w", err)
		}
		defer controller.Stop()
		logger.Printf("watching %d path(s) for changes", len(cfg.Paths))
	}

	httpServer := httpapi.NewServer(query, cfg, logger)

	go func() {
		logger.Printf("listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("server forced to shutdown: %v", err)
	}

	logger.Println("exited")
	return nil
}
