// Package service implements the credential registry: single-use
// initialization, owner-gated minting and the expiration ledger.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	credmetrics "zkid/internal/credential/metrics"
	"zkid/internal/credential/models"
	id "zkid/pkg/domain"
	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/platform/audit"
	"zkid/pkg/platform/sentinel"
	"zkid/pkg/platform/tx"
	"zkid/pkg/requestcontext"
)

// Store persists the registry, ownership index and expiration ledger.
type Store interface {
	CreateRegistry(ctx context.Context, r *models.Registry) error
	FindRegistry(ctx context.Context) (*models.Registry, error)
	Append(ctx context.Context, owner id.Principal, expiration uint64, issuedAt time.Time) (*models.Credential, error)
	FindCredential(ctx context.Context, tokenID id.TokenID) (*models.Credential, error)
	CountByOwner(ctx context.Context, owner id.Principal) (uint64, error)
	FindByOwnerIndex(ctx context.Context, owner id.Principal, index uint64) (id.TokenID, error)
}

// Service is the credential registry.
type Service struct {
	store   Store
	tx      tx.Runner
	logger  *slog.Logger
	audit   *audit.Logger
	metrics *credmetrics.Metrics
}

type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher audit.Emitter
	metrics        *credmetrics.Metrics
	tx             tx.Runner
}

// Option configures the service.
type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Emitter) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *credmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithTx sets the transaction boundary. Defaults to an in-memory lock.
func WithTx(runner tx.Runner) Option {
	return func(c *serviceConfig) {
		c.tx = runner
	}
}

func New(store Store, opts ...Option) *Service {
	cfg := serviceConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tx == nil {
		cfg.tx = tx.NewInMemory()
	}
	return &Service{
		store:   store,
		tx:      cfg.tx,
		logger:  cfg.logger,
		audit:   audit.NewLogger(cfg.logger, cfg.auditPublisher),
		metrics: cfg.metrics,
	}
}

// Initialize creates the registry. The caller must be the owner it names.
func (s *Service) Initialize(ctx context.Context, req models.InitializeRequest) (*models.Registry, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Caller != req.Owner {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller must be the registry owner")
	}

	r := &models.Registry{
		Owner:     req.Owner,
		Name:      req.Name,
		Symbol:    req.Symbol,
		BaseURI:   req.BaseURI,
		CreatedAt: requestcontext.Now(ctx),
	}
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.store.CreateRegistry(ctx, r)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeAlreadyInitialized, "registry already initialized")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to initialize registry")
	}

	s.audit.Record(ctx, audit.Event{
		Action: string(audit.EventRegistryInitialized),
		Actor:  req.Caller.String(),
	})
	return r, nil
}

// Mint issues the next credential to owner. Only the registry owner may mint.
// The ownership record and the expiration entry are written atomically.
func (s *Service) Mint(ctx context.Context, caller, owner id.Principal, expiration uint64) (id.TokenID, error) {
	if owner.IsNil() {
		return 0, dErrors.New(dErrors.CodeValidation, "owner is required")
	}

	var minted *models.Credential
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		r, err := s.store.FindRegistry(ctx)
		if err != nil {
			return wrapRegistryErr(err)
		}
		if caller != r.Owner {
			return dErrors.New(dErrors.CodeUnauthorized, "only the registry owner may mint")
		}
		minted, err = s.store.Append(ctx, owner, expiration, requestcontext.Now(ctx))
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return wrapRegistryErr(err)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint credential")
		}
		c := *minted
		tx.AfterCommit(ctx, func() { s.recordMinted(ctx, c) })
		return nil
	})
	if err != nil {
		return 0, err
	}
	return minted.TokenID, nil
}

// recordMinted runs only once the mint is durable; callers may wrap Mint in
// a wider boundary that still rolls back.
func (s *Service) recordMinted(ctx context.Context, c models.Credential) {
	s.metrics.IncrementMinted(uint64(c.TokenID) + 1)
	s.logger.InfoContext(ctx, "credential minted",
		"token_id", c.TokenID.String(),
		"owner", c.Owner.String(),
		"expiration", strconv.FormatUint(c.Expiration, 10),
		"request_id", requestcontext.RequestID(ctx),
	)
}

// GetExpiration returns the ledger entry for tokenID, or 0 when the token is unknown.
func (s *Service) GetExpiration(ctx context.Context, tokenID id.TokenID) (uint64, error) {
	c, err := s.store.FindCredential(ctx, tokenID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, nil
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load expiration")
	}
	return c.Expiration, nil
}

// IsExpired reports whether tokenID is past its expiration at the request time.
// Unknown tokens and tokens without expiration are not expired.
func (s *Service) IsExpired(ctx context.Context, tokenID id.TokenID) (bool, error) {
	exp, err := s.GetExpiration(ctx, tokenID)
	if err != nil {
		return false, err
	}
	return models.IsExpired(exp, requestcontext.Now(ctx)), nil
}

// Credential returns the full record for tokenID.
func (s *Service) Credential(ctx context.Context, tokenID id.TokenID) (*models.Credential, error) {
	c, err := s.store.FindCredential(ctx, tokenID)
	if err != nil {
		return nil, wrapCredentialErr(err)
	}
	return c, nil
}

func (s *Service) OwnerOf(ctx context.Context, tokenID id.TokenID) (id.Principal, error) {
	c, err := s.Credential(ctx, tokenID)
	if err != nil {
		return "", err
	}
	return c.Owner, nil
}

func (s *Service) Balance(ctx context.Context, owner id.Principal) (uint64, error) {
	if owner.IsNil() {
		return 0, dErrors.New(dErrors.CodeValidation, "owner is required")
	}
	n, err := s.store.CountByOwner(ctx, owner)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count credentials")
	}
	return n, nil
}

func (s *Service) TokenOfOwnerByIndex(ctx context.Context, owner id.Principal, index uint64) (id.TokenID, error) {
	tokenID, err := s.store.FindByOwnerIndex(ctx, owner, index)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "owner index out of bounds")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}
	return tokenID, nil
}

// TokenURI is the base URI followed by the decimal token id. The token must exist.
func (s *Service) TokenURI(ctx context.Context, tokenID id.TokenID) (string, error) {
	r, err := s.Registry(ctx)
	if err != nil {
		return "", err
	}
	if _, err := s.Credential(ctx, tokenID); err != nil {
		return "", err
	}
	return r.TokenURI(tokenID), nil
}

// Registry returns name, symbol, base URI and total supply. NotInitialized
// before Initialize.
func (s *Service) Registry(ctx context.Context) (*models.Registry, error) {
	r, err := s.store.FindRegistry(ctx)
	if err != nil {
		return nil, wrapRegistryErr(err)
	}
	return r, nil
}

func wrapRegistryErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotInitialized, "registry not initialized")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry")
}

func wrapCredentialErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "credential not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
}
