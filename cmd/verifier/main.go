// Command verifier runs the standalone proof verifier that backs the
// remote verifier capability of the issuance service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"zkid/internal/platform/config"
	"zkid/internal/platform/health"
	"zkid/internal/platform/logger"
	"zkid/internal/verifier/handler"
	"zkid/internal/verifier/schnorr"
	"zkid/pkg/platform/middleware/apikey"
	"zkid/pkg/platform/middleware/request"
	"zkid/pkg/platform/validation"
)

func main() {
	cfg, err := config.VerifierFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "verifier: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, "zkid-verifier")
	if cfg.APIKey == "" {
		log.Warn("VERIFIER_API_KEY not set, /verify is unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("verifier stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("verifier stopped")
}

func run(ctx context.Context, cfg config.VerifierServer, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting verifier", "addr", cfg.Addr, "scheme", schnorr.Scheme)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newRouter(cfg config.VerifierServer, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(request.Logger(log))
	r.Use(request.Instrument(request.NewMetrics(nil)))
	r.Use(request.BodyLimit(validation.MaxBodySize))
	r.Use(request.ContentTypeJSON)

	health.New(cfg.Environment).Register(r)
	r.Handle("/metrics", promhttp.Handler())

	h := handler.New(schnorr.New(schnorr.WithLogger(log)), log)
	r.Group(func(r chi.Router) {
		r.Use(apikey.Require(cfg.APIKey, log))
		h.Register(r)
	})
	return r
}
