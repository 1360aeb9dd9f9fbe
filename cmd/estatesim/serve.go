package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"estatesim/internal/api"
	"estatesim/internal/config"
	"estatesim/internal/logging"
	"estatesim/internal/store"
)

var (
	serveAddr string
	serveDB   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long:  "serve starts the game server: scenario catalogue, solo game sessions, match rooms, and replay verification.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		if serveDB != "" {
			cfg.DBPath = serveDB
		}
		logger := logging.New(cfg.LogLevel)

		db, err := store.New(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		server := api.NewServer(db, logger)
		httpServer := &http.Server{
			Addr:        cfg.Addr,
			Handler:     server.Routes(),
			ReadTimeout: cfg.RequestTimeout,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", cfg.Addr, "db", cfg.DBPath)
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides ESTATESIM_ADDR)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite path (overrides ESTATESIM_DB)")
}
