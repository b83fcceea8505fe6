// Package main is the crashscope command. It reads crash reports out of
// modpack bug reports and comments on what it finds, either as a GitHub
// Actions step or as an HTTP service.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/crashscope/core/cmd/crashscope/middleware"
	"github.com/crashscope/core/internal/config"
	"github.com/crashscope/core/internal/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve crash report analysis over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().String("sections", "", "comma separated form sections searched when a request names none")
	serveCmd.Flags().String("pack-version-field", "", "form section holding the pack version")
}

func newRouter(cfg config.Config, analyzer handlers.Analyzer, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.HealthHandler)
	mux.HandleFunc("/analyze", handlers.AnalyzeHandler(analyzer, cfg.MaxBodyBytes, log))
	return middleware.Cors(cfg.CORSAllowedOrigin)(mux)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg, false)
	if err != nil {
		return err
	}

	// One runner, and so one manifest cache, for the life of the process.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(cfg, newRunner(cfg, log), log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		log.Info("Server starting", "addr", cfg.HTTPAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("Server stopped")
	return nil
}
