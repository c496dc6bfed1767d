// Package service implements the issuance orchestrator: an administrator-gated
// mint that runs only after a delegated proof verification accepts.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks SettingsStore,Capabilities
//go:generate mockgen -source=../resolver/resolver.go -destination=mocks/store_mock.go -package=mocks CredentialStore

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	issuancemetrics "zkid/internal/issuance/metrics"
	"zkid/internal/issuance/models"
	"zkid/internal/issuance/resolver"
	"zkid/internal/verifier"
	id "zkid/pkg/domain"
	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/platform/audit"
	"zkid/pkg/platform/sentinel"
	"zkid/pkg/platform/tracer"
	"zkid/pkg/platform/tx"
	"zkid/pkg/requestcontext"
)

// SettingsStore persists the three tagged orchestrator settings.
type SettingsStore interface {
	Get(ctx context.Context, key models.DataKey) (string, error)
	// InsertAll writes all values or none; an existing key yields sentinel.ErrAlreadyUsed.
	InsertAll(ctx context.Context, values map[models.DataKey]string) error
}

// Capabilities resolves references to the injected collaborators.
type Capabilities interface {
	Verifier(ref id.Reference) (verifier.Verifier, error)
	Store(ref id.Reference) (resolver.CredentialStore, error)
}

// Service is the issuance orchestrator.
type Service struct {
	settings SettingsStore
	caps     Capabilities
	tx       tx.Runner
	logger   *slog.Logger
	audit    *audit.Logger
	metrics  *issuancemetrics.Metrics
	tracer   tracer.Tracer
}

type inFlightKey struct{}

func New(settings SettingsStore, caps Capabilities, opts ...Option) *Service {
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
	if cfg.tracer == nil {
		cfg.tracer = tracer.Noop()
	}
	return &Service{
		settings: settings,
		caps:     caps,
		tx:       cfg.tx,
		logger:   cfg.logger,
		audit:    audit.NewLogger(cfg.logger, cfg.auditPublisher),
		metrics:  cfg.metrics,
		tracer:   cfg.tracer,
	}
}

// Initialize stores the administrator and capability references exactly once.
// The caller must be the administrator it registers.
func (s *Service) Initialize(ctx context.Context, req models.InitializeRequest) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanInitialize,
		tracer.String(tracer.AttrCaller, req.Caller.String()),
	)
	defer func() { span.End(err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Caller != req.Admin {
		return dErrors.New(dErrors.CodeUnauthorized, "caller must be the administrator being registered")
	}
	if _, err := s.caps.Verifier(req.VerifierRef); err != nil {
		return dErrors.Reclassify(err, dErrors.CodeValidation, "verifier_ref: unknown verifier")
	}
	if _, err := s.caps.Store(req.StoreRef); err != nil {
		return dErrors.Reclassify(err, dErrors.CodeValidation, "store_ref: unknown credential store")
	}
	span.SetAttributes(
		tracer.String(tracer.AttrVerifierRef, req.VerifierRef.String()),
		tracer.String(tracer.AttrStoreRef, req.StoreRef.String()),
	)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.settings.InsertAll(ctx, req.Values())
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.New(dErrors.CodeAlreadyInitialized, "issuance already initialized")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to initialize issuance")
	}

	s.metrics.IncrementInitialized()
	s.audit.Record(ctx, audit.Event{
		Action: string(audit.EventIssuanceInitialized),
		Actor:  req.Admin.String(),
	})
	span.AddEvent(tracer.EventAuditEmitted)
	return nil
}

// MintCredential verifies the proof and, on acceptance, mints a credential
// for the subject. Verification runs before any write; the mint runs inside
// the transaction boundary so a failure leaves nothing behind.
func (s *Service) MintCredential(ctx context.Context, req models.MintRequest) (result *models.IssuanceResult, err error) {
	if _, busy := ctx.Value(inFlightKey{}).(bool); busy {
		s.metrics.RecordOutcome(issuancemetrics.OutcomeConflict)
		return nil, dErrors.New(dErrors.CodeConflict, "issuance already in progress")
	}
	ctx = context.WithValue(ctx, inFlightKey{}, true)

	req.Normalize()
	fingerprint := verifier.Fingerprint(req.VerificationKey, req.Proof)
	ctx, span := s.tracer.Start(ctx, tracer.SpanMintCredential,
		tracer.String(tracer.AttrCaller, req.Caller.String()),
		tracer.String(tracer.AttrSubject, req.Subject.String()),
		tracer.Uint64(tracer.AttrExpiration, req.Expiration),
		tracer.String(tracer.AttrProofFingerprint, fingerprint.String()),
	)
	defer func() {
		span.End(err)
		s.metrics.RecordOutcome(outcomeFor(err))
	}()

	admin, err := s.GetAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if req.Caller != admin {
		s.recordRejected(ctx, req, fingerprint, "caller is not the administrator")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "only the administrator may issue credentials")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	verifierRef, err := s.GetVerifierReference(ctx)
	if err != nil {
		return nil, err
	}
	proofID, err := s.verify(ctx, verifierRef, req)
	if err != nil {
		s.recordRejected(ctx, req, fingerprint, err.Error())
		return nil, err
	}

	storeRef, err := s.GetStoreReference(ctx)
	if err != nil {
		return nil, err
	}
	tokenID, err := s.mint(ctx, storeRef, admin, req)
	if err != nil {
		s.recordRejected(ctx, req, fingerprint, err.Error())
		return nil, err
	}

	span.SetAttributes(tracer.String(tracer.AttrTokenID, tokenID.String()))
	s.audit.Record(ctx, audit.Event{
		Action:           string(audit.EventCredentialIssued),
		Actor:            admin.String(),
		Subject:          req.Subject.String(),
		TokenID:          tokenID.String(),
		Decision:         audit.DecisionGranted,
		ProofFingerprint: fingerprint.String(),
	})
	span.AddEvent(tracer.EventAuditEmitted)
	s.logger.InfoContext(ctx, "credential issued",
		"token_id", tokenID.String(),
		"subject", req.Subject.String(),
		"expiration", strconv.FormatUint(req.Expiration, 10),
		"proof_id", proofID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)

	return &models.IssuanceResult{
		TokenID:    tokenID,
		Subject:    req.Subject,
		Expiration: req.Expiration,
		ProofID:    proofID,
	}, nil
}

// verify resolves the verifier and classifies its outcome. A rejection, a
// resolution failure and an aborted call all surface as VerificationFailed.
func (s *Service) verify(ctx context.Context, ref id.Reference, req models.MintRequest) (proofID verifier.ProofID, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerifyProof,
		tracer.String(tracer.AttrVerifierRef, ref.String()),
	)
	defer func() { span.End(err) }()

	v, err := s.caps.Verifier(ref)
	if err != nil {
		return verifier.ProofID{}, dErrors.Reclassify(err, dErrors.CodeVerificationFailed, "verifier unavailable")
	}

	start := time.Now()
	out, err := v.VerifyProof(ctx, req.VerificationKey, req.Proof)
	if err != nil {
		s.metrics.ObserveVerification(ref.String(), "aborted", time.Since(start))
		return verifier.ProofID{}, dErrors.Reclassify(err, dErrors.CodeVerificationFailed, "proof verification aborted")
	}
	span.SetAttributes(tracer.Bool(tracer.AttrAccepted, out.Accepted))
	if !out.Accepted {
		s.metrics.ObserveVerification(ref.String(), "rejected", time.Since(start))
		msg := "proof rejected"
		if out.Reason != "" {
			msg += ": " + out.Reason
		}
		return verifier.ProofID{}, dErrors.New(dErrors.CodeVerificationFailed, msg)
	}
	s.metrics.ObserveVerification(ref.String(), "accepted", time.Since(start))

	if out.ProofID.IsZero() {
		return verifier.Fingerprint(req.VerificationKey, req.Proof), nil
	}
	return out.ProofID, nil
}

// mint resolves the credential store and mints inside the transaction boundary.
// Any failure surfaces as IssuanceFailed.
func (s *Service) mint(ctx context.Context, ref id.Reference, admin id.Principal, req models.MintRequest) (tokenID id.TokenID, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanStoreMint,
		tracer.String(tracer.AttrStoreRef, ref.String()),
	)
	defer func() { span.End(err) }()

	store, err := s.caps.Store(ref)
	if err != nil {
		return 0, dErrors.Reclassify(err, dErrors.CodeIssuanceFailed, "credential store unavailable")
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var mintErr error
		tokenID, mintErr = store.Mint(ctx, admin, req.Subject, req.Expiration)
		return mintErr
	})
	if err != nil {
		return 0, dErrors.Reclassify(err, dErrors.CodeIssuanceFailed, "credential mint failed")
	}
	return tokenID, nil
}

// GetAdmin returns the administrator, or NotInitialized.
func (s *Service) GetAdmin(ctx context.Context) (id.Principal, error) {
	v, err := s.load(ctx, models.DataKeyAdmin)
	return id.Principal(v), err
}

// GetVerifierReference returns the verifier reference, or NotInitialized.
func (s *Service) GetVerifierReference(ctx context.Context) (id.Reference, error) {
	v, err := s.load(ctx, models.DataKeyVerifierRef)
	return id.Reference(v), err
}

// GetStoreReference returns the credential store reference, or NotInitialized.
func (s *Service) GetStoreReference(ctx context.Context) (id.Reference, error) {
	v, err := s.load(ctx, models.DataKeyStoreRef)
	return id.Reference(v), err
}

func (s *Service) load(ctx context.Context, key models.DataKey) (string, error) {
	v, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotInitialized, key.String()+" not initialized")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+key.String())
	}
	if v == "" {
		return "", dErrors.New(dErrors.CodeNotInitialized, key.String()+" not initialized")
	}
	return v, nil
}

func (s *Service) recordRejected(ctx context.Context, req models.MintRequest, fingerprint verifier.ProofID, reason string) {
	s.audit.Record(ctx, audit.Event{
		Action:           string(audit.EventIssuanceRejected),
		Actor:            req.Caller.String(),
		Subject:          req.Subject.String(),
		Decision:         audit.DecisionDenied,
		Reason:           reason,
		ProofFingerprint: fingerprint.String(),
	})
}

func outcomeFor(err error) string {
	if err == nil {
		return issuancemetrics.OutcomeIssued
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeUnauthorized:
		return issuancemetrics.OutcomeUnauthorized
	case dErrors.CodeNotInitialized:
		return issuancemetrics.OutcomeNotInitialized
	case dErrors.CodeVerificationFailed:
		return issuancemetrics.OutcomeVerificationFailed
	case dErrors.CodeIssuanceFailed:
		return issuancemetrics.OutcomeIssuanceFailed
	case dErrors.CodeConflict:
		return issuancemetrics.OutcomeConflict
	default:
		return issuancemetrics.OutcomeInvalid
	}
}
