package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cherseta/chersey/internal/auth"
	"github.com/cherseta/chersey/internal/chat"
	"github.com/cherseta/chersey/internal/crumbs"
	"github.com/cherseta/chersey/internal/llm"
	"github.com/cherseta/chersey/internal/logger"
	"github.com/cherseta/chersey/internal/notion"
	"github.com/cherseta/chersey/internal/research"
	"github.com/cherseta/chersey/internal/search"
	"github.com/cherseta/chersey/internal/server"
	"github.com/cherseta/chersey/internal/transcript"
)

const (
	clientTimeout   = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	defer log.Sync()

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ledger, closeLedger, err := openLedger(cfg, db, log)
	if err != nil {
		return err
	}
	defer closeLedger()

	svc := crumbs.NewService(ledger, nil, log)
	awarder := crumbs.NewAwarder(svc, log, cfg.Crumbs.QueueSize)
	defer awarder.Close()

	// Providers are built on first use so a missing key only disables the
	// feature that needs it.
	chatClient := llm.NewLazy(func() (llm.Streamer, error) { return llm.NewClient(cfg.LLM) })
	researchClient := llm.NewLazy(func() (llm.Client, error) { return llm.NewResearchClient(cfg.LLM) })

	searcher := search.NewTavily(cfg.Search.TavilyKey, clientTimeout)
	agent := research.NewAgent(researchClient, searcher, search.Options{
		Depth:      cfg.Search.Depth,
		MaxResults: cfg.Search.MaxResults,
	}, log)

	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	srv := server.New(server.Deps{
		DB:          db,
		Crumbs:      svc,
		Awarder:     awarder,
		Chat:        chat.NewOrchestrator(db, chatClient, log, timeout),
		Research:    agent,
		Transcripts: transcript.NewFetcher(clientTimeout),
		Notion:      notion.NewClient(cfg.Notion.Token, cfg.Notion.ParentPageID, clientTimeout),
		Verifier:    auth.New(cfg.Auth.FirebaseAPIKey, log),
		Log:         log,
		Version:     VersionString(),
	})

	addr := cfg.ListenAddr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("chersey serving",
			logger.String("addr", addr),
			logger.String("db", db.Path),
			logger.String("crumbs_backend", cfg.Crumbs.Backend),
			logger.String("llm", cfg.LLM.Provider))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
