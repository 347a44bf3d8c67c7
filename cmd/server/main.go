package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/embed"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Error("open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	// Optional semantic scorer.
	opts := []outline.Option{outline.WithLogger(log)}
	var (
		embedder   *embed.Client
		embedStats *embed.Stats
	)
	if cfg.EmbedEnabled() {
		embedStats = embed.NewStats(cfg.EmbedStatsWindow)
		embedder = embed.NewClient(cfg.EmbedEndpoint, cfg.EmbedModel, cfg.EmbedTimeout,
			embed.WithAPIKey(cfg.EmbedAPIKey),
			embed.WithStats(embedStats),
			embed.WithLogger(log),
		)
		proto := embed.NewPrototype(embedder, cfg.Prototype.HeadingExamples, cfg.Prototype.BodyExamples, cfg.Prototype.Gain)
		opts = append(opts, outline.WithSemantic(proto))
		log.Info("semantic scorer enabled", "endpoint", cfg.EmbedEndpoint, "model", cfg.EmbedModel)
	}
	analyzer := outline.New(cfg.Analyzer, opts...)

	orch := pipeline.NewOrchestrator(cfg, pipeline.NewOutliner(analyzer, cfg.PDFRepair), st, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, embedStats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if embedder != nil {
			embedder.Close()
		}
		if err := st.Close(); err != nil {
			log.Warn("close store", "error", err)
		}
	}()

	log.Info("starting docoutline", "port", cfg.Port, "db", cfg.DBPath, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
