// Command outline-mcp serves the outline tools over MCP stdio.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stored outlines are offered only when DB_PATH points at an existing database.
	var st *store.Store
	if _, err := os.Stat(cfg.DBPath); err == nil {
		st, err = store.Open(ctx, cfg.DBPath)
		if err != nil {
			log.Error("open store", "path", cfg.DBPath, "error", err)
			os.Exit(1)
		}
		defer st.Close()
	}

	outliner := pipeline.NewOutliner(outline.New(cfg.Analyzer, outline.WithLogger(log)), cfg.PDFRepair)
	srv := mcp.NewServer(&mcp.Implementation{Name: "docoutline", Version: api.Version}, nil)
	api.RegisterMCP(srv, outliner, st, cfg.MaxUploadBytes)

	log.Info("serving mcp on stdio", "store", st != nil)
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Error("mcp server", "error", err)
		os.Exit(1)
	}
}
