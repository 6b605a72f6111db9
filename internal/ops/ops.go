// Package ops поднимает служебный HTTP: метрики Prometheus и проверки живости/готовности.
package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// PingFunc проверяет зависимость, без которой сервис не готов принимать трафик.
type PingFunc func(ctx context.Context) error

// Config holds ops router configuration
type Config struct {
	Logger   zerolog.Logger
	Gatherer prometheus.Gatherer
	Ready    PingFunc
	// ReadyTimeout ограничивает одну проверку /readyz.
	ReadyTimeout time.Duration
}

// NewRouter creates the ops router
func NewRouter(cfg Config) http.Handler {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 2 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Ready == nil {
			writeText(w, http.StatusOK, "ready")
			return
		}
		ctx, cancel := context.WithTimeout(req.Context(), cfg.ReadyTimeout)
		defer cancel()
		if err := cfg.Ready(ctx); err != nil {
			cfg.Logger.Warn().Err(err).Msg("readiness check failed")
			writeText(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		writeText(w, http.StatusOK, "ready")
	})

	return r
}

// NewServer оборачивает роутер в http.Server с разумными таймаутами.
func NewServer(addr string, cfg Config) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(cfg),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}
