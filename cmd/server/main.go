package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docsift/docsift/internal/ai"
	"github.com/docsift/docsift/internal/command"
	"github.com/docsift/docsift/internal/config"
	"github.com/docsift/docsift/internal/db"
	"github.com/docsift/docsift/internal/extract"
	"github.com/docsift/docsift/internal/history"
	"github.com/docsift/docsift/internal/httpapi"
	"github.com/docsift/docsift/internal/ingest"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg := config.Load()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Error("create upload dir", "dir", cfg.UploadDir, "error", err.Error())
		os.Exit(1)
	}

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Error("connect database", "driver", cfg.DBDriver, "error", err.Error())
		os.Exit(1)
	}

	store, err := history.NewStore(gdb, log)
	if err != nil {
		log.Error("init history store", "error", err.Error())
		os.Exit(1)
	}

	resolver := command.NewResolver(cfg.CommandsDir)
	if err := resolver.Seed(); err != nil {
		log.Error("seed commands dir", "dir", cfg.CommandsDir, "error", err.Error())
		os.Exit(1)
	}

	client := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout)
	normalizer := ingest.NewNormalizer(cfg.UploadDir, client, log)
	invoker := extract.NewInvoker(client, log)
	svc := extract.NewService(resolver, normalizer, invoker, store, log)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: httpapi.NewRouter(svc),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server.listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server.failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("server.shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server.shutdown_failed", "error", err.Error())
	}
}
