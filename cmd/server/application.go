package main

import (
	"context"
	"fmt"
	"log/slog"

	credmetrics "zkid/internal/credential/metrics"
	credmodels "zkid/internal/credential/models"
	credservice "zkid/internal/credential/service"
	credstore "zkid/internal/credential/store"
	issuancemetrics "zkid/internal/issuance/metrics"
	"zkid/internal/issuance/resolver"
	issuanceservice "zkid/internal/issuance/service"
	issuancestore "zkid/internal/issuance/store"
	jwttoken "zkid/internal/jwt_token"
	"zkid/internal/platform/config"
	"zkid/internal/verifier"
	"zkid/internal/verifier/cache"
	"zkid/internal/verifier/remote"
	"zkid/internal/verifier/schnorr"
	id "zkid/pkg/domain"
	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/platform/audit"
	"zkid/pkg/platform/audit/publisher"
	auditkafka "zkid/pkg/platform/audit/store/kafka"
	auditmemory "zkid/pkg/platform/audit/store/memory"
	auditpostgres "zkid/pkg/platform/audit/store/postgres"
	"zkid/pkg/platform/circuit"
	"zkid/pkg/platform/tracer"
)

// References registered with the resolver at startup.
const (
	schnorrVerifierRef id.Reference = "verifier/schnorr"
	remoteVerifierRef  id.Reference = "verifier/remote"
	primaryStoreRef    id.Reference = "store/primary"
)

const auditBufferSize = 1024

type application struct {
	credentials *credservice.Service
	issuance    *issuanceservice.Service
	remote      *remote.Client
	jwt         *jwttoken.Service
	audit       *publisher.Publisher
}

func newApplication(ctx context.Context, cfg config.Server, infra *infrastructure, log *slog.Logger) (*application, error) {
	runner := infra.txRunner()
	app := &application{}

	app.audit = publisher.New(newAuditStore(cfg, infra),
		publisher.WithBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)

	var credentialStore credservice.Store = credstore.NewInMemory()
	var settingsStore issuanceservice.SettingsStore = issuancestore.NewInMemory()
	if infra.db != nil {
		credentialStore = credstore.NewPostgres(infra.db.DB())
		settingsStore = issuancestore.NewPostgres(infra.db.DB())
	}

	app.credentials = credservice.New(credentialStore,
		credservice.WithLogger(log),
		credservice.WithAuditPublisher(app.audit),
		credservice.WithMetrics(credmetrics.New()),
		credservice.WithTx(runner),
	)
	if err := bootstrapRegistry(ctx, cfg.Registry, app.credentials, log); err != nil {
		app.Close()
		return nil, err
	}

	res := resolver.New()
	withCache := verdictCache(cfg, infra, log)
	if err := res.RegisterVerifier(schnorrVerifierRef, withCache(schnorrVerifierRef, schnorr.New(schnorr.WithLogger(log)))); err != nil {
		app.Close()
		return nil, err
	}
	if cfg.Verifier.URL != "" {
		app.remote = remote.New(remote.Config{
			BaseURL: cfg.Verifier.URL,
			APIKey:  cfg.Verifier.APIKey,
			Timeout: cfg.Verifier.Timeout,
			Breaker: circuit.New("remote-verifier"),
			Logger:  log,
		})
		if err := res.RegisterVerifier(remoteVerifierRef, withCache(remoteVerifierRef, app.remote)); err != nil {
			app.Close()
			return nil, err
		}
	}
	if err := res.RegisterStore(primaryStoreRef, app.credentials); err != nil {
		app.Close()
		return nil, err
	}
	verifiers, stores := res.References()
	log.Info("capabilities registered", "verifiers", verifiers, "stores", stores)

	app.issuance = issuanceservice.New(settingsStore, res,
		issuanceservice.WithLogger(log),
		issuanceservice.WithAuditPublisher(app.audit),
		issuanceservice.WithMetrics(issuancemetrics.New()),
		issuanceservice.WithTracer(tracer.New(nil)),
		issuanceservice.WithTx(runner),
	)

	app.jwt = jwttoken.New(jwttoken.Config{
		SigningKey: cfg.JWTSigningKey,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		TTL:        config.TokenTTL,
		Env:        cfg.Environment,
	})

	return app, nil
}

// Close drains pending audit events.
func (a *application) Close() {
	a.audit.Close()
}

// newAuditStore persists to PostgreSQL when available and additionally
// streams to Kafka when brokers are configured.
func newAuditStore(cfg config.Server, infra *infrastructure) audit.Store {
	var durable audit.Store = auditmemory.NewInMemoryStore()
	if infra.db != nil {
		durable = auditpostgres.New(infra.db.DB())
	}
	if infra.kafka == nil {
		return durable
	}
	return audit.NewFanout(durable, auditkafka.New(infra.kafka, cfg.Kafka.AuditTopic))
}

// verdictCache wraps verifiers with the Redis verdict cache when Redis is configured.
// Each verifier gets its own key space in the shared store.
func verdictCache(cfg config.Server, infra *infrastructure, log *slog.Logger) func(id.Reference, verifier.Verifier) verifier.Verifier {
	if infra.redis == nil {
		return func(_ id.Reference, v verifier.Verifier) verifier.Verifier { return v }
	}
	store := cache.NewRedisStore(infra.redis.Client, cfg.Redis.VerdictTTL)
	metrics := cache.NewMetrics()
	return func(ref id.Reference, v verifier.Verifier) verifier.Verifier {
		return cache.New(ref.String(), v, store, cache.WithLogger(log), cache.WithMetrics(metrics))
	}
}

// bootstrapRegistry initializes the credential registry from configuration.
// An already initialized registry is left untouched.
func bootstrapRegistry(ctx context.Context, cfg config.RegistryConfig, credentials *credservice.Service, log *slog.Logger) error {
	if cfg.Owner == "" {
		return nil
	}
	owner, err := id.ParsePrincipal(cfg.Owner)
	if err != nil {
		return fmt.Errorf("REGISTRY_OWNER: %w", err)
	}

	_, err = credentials.Initialize(ctx, credmodels.InitializeRequest{
		Caller:  owner,
		Owner:   owner,
		Name:    cfg.Name,
		Symbol:  cfg.Symbol,
		BaseURI: cfg.BaseURI,
	})
	switch {
	case err == nil:
		log.Info("credential registry initialized", "owner", owner.String(), "symbol", cfg.Symbol)
	case dErrors.HasCode(err, dErrors.CodeAlreadyInitialized):
		log.Info("credential registry already initialized")
	default:
		return fmt.Errorf("initialize credential registry: %w", err)
	}
	return nil
}
