package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	credhandler "zkid/internal/credential/handler"
	issuancehandler "zkid/internal/issuance/handler"
	"zkid/internal/platform/config"
	"zkid/internal/platform/health"
	"zkid/pkg/platform/middleware/auth"
	"zkid/pkg/platform/middleware/request"
	"zkid/pkg/platform/validation"
)

// newRouter wires public reads, health and metrics, and the authenticated
// admin surface.
func newRouter(cfg config.Server, app *application, infra *infrastructure, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(request.Logger(log))
	r.Use(request.Clock)
	r.Use(request.Instrument(request.NewMetrics(nil)))
	r.Use(request.BodyLimit(validation.MaxBodySize))
	r.Use(request.ContentTypeJSON)

	checks := health.New(cfg.Environment)
	if infra.db != nil {
		checks.RegisterCheck("postgres", infra.db.Health)
	}
	if infra.redis != nil {
		checks.RegisterCheck("redis", infra.redis.Health)
	}
	if infra.kafka != nil {
		checks.RegisterCheck("kafka", infra.kafka.Ping)
	}
	if app.remote != nil {
		checks.RegisterCheck("verifier", app.remote.Health)
	}
	checks.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	credentials := credhandler.New(app.credentials, log)
	credentials.Register(r)

	issuance := issuancehandler.New(app.issuance, log)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequirePrincipal(app.jwt, log))
		credentials.RegisterAdmin(r)
		issuance.Register(r)
	})

	return r
}
