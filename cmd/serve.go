package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hn-board/internal/config"
	"hn-board/internal/render"
	"hn-board/internal/stories"
	"hn-board/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if serveAddr != "" {
			cfg.Serve.Addr = serveAddr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.Serve.Addr,
			Handler:           newServeMux(cfg, newAggregator(cfg)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			slog.Info("serve: shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		slog.Info("serve: listening", "addr", cfg.Serve.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// newServeMux wires the board page, metrics and health endpoints. Each page
// request runs the pipelines against a fresh board.
func newServeMux(cfg config.Config, agg *stories.Aggregator) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		board := render.NewBoard()
		p := &render.HTMLPresenter{Board: board}
		if err := worker.NewManager(boardWorkers(cfg, agg, cfg.Board.Count, p)...).Start(r.Context()); err != nil {
			slog.Warn("serve: some sections unavailable", "error", err)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := render.WriteHTML(w, cfg.Board.Title, board, cfg.Sections()); err != nil {
			slog.Error("serve: write page", "error", err)
		}
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return mux
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides serve.addr)")
}
