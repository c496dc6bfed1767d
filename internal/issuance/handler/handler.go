// Package handler serves the issuance orchestrator over HTTP. Every route
// requires an authenticated principal; the orchestrator decides whether that
// principal is the administrator.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"zkid/internal/issuance/models"
	id "zkid/pkg/domain"
	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/platform/httputil"
	"zkid/pkg/requestcontext"
)

// Service defines the orchestrator operations exposed over HTTP.
type Service interface {
	Initialize(ctx context.Context, req models.InitializeRequest) error
	MintCredential(ctx context.Context, req models.MintRequest) (*models.IssuanceResult, error)
	GetAdmin(ctx context.Context) (id.Principal, error)
	GetVerifierReference(ctx context.Context) (id.Reference, error)
	GetStoreReference(ctx context.Context) (id.Reference, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin routes. The caller must sit behind authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/issuance/initialize", h.HandleInitialize)
	r.Post("/admin/credentials", h.HandleMintCredential)
	r.Get("/admin/issuance/admin", h.HandleGetAdmin)
	r.Get("/admin/issuance/verifier", h.HandleGetVerifierReference)
	r.Get("/admin/issuance/store", h.HandleGetStoreReference)
}

func (h *Handler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[models.InitializeRequest](w, r, h.logger)
	if !ok {
		return
	}
	req.Caller = caller

	if err := h.service.Initialize(ctx, *req); err != nil {
		h.logError(ctx, "initialize issuance failed", err, "caller", caller.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, []models.SettingResponse{
		{Key: models.DataKeyAdmin.String(), Value: req.Admin.String()},
		{Key: models.DataKeyVerifierRef.String(), Value: req.VerifierRef.String()},
		{Key: models.DataKeyStoreRef.String(), Value: req.StoreRef.String()},
	})
}

// HandleMintCredential verifies the submitted proof and mints a credential for
// the subject named in the body.
func (h *Handler) HandleMintCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := httputil.RequirePrincipal(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[models.MintRequest](w, r, h.logger)
	if !ok {
		return
	}
	req.Caller = caller

	result, err := h.service.MintCredential(ctx, *req)
	if err != nil {
		h.logError(ctx, "mint credential failed", err,
			"caller", caller.String(),
			"subject", req.Subject.String(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.ToIssuanceResponse(result))
}

func (h *Handler) HandleGetAdmin(w http.ResponseWriter, r *http.Request) {
	h.writeSetting(w, r, models.DataKeyAdmin, func(ctx context.Context) (string, error) {
		admin, err := h.service.GetAdmin(ctx)
		return admin.String(), err
	})
}

func (h *Handler) HandleGetVerifierReference(w http.ResponseWriter, r *http.Request) {
	h.writeSetting(w, r, models.DataKeyVerifierRef, func(ctx context.Context) (string, error) {
		ref, err := h.service.GetVerifierReference(ctx)
		return ref.String(), err
	})
}

func (h *Handler) HandleGetStoreReference(w http.ResponseWriter, r *http.Request) {
	h.writeSetting(w, r, models.DataKeyStoreRef, func(ctx context.Context) (string, error) {
		ref, err := h.service.GetStoreReference(ctx)
		return ref.String(), err
	})
}

func (h *Handler) writeSetting(w http.ResponseWriter, r *http.Request, key models.DataKey, load func(context.Context) (string, error)) {
	ctx := r.Context()
	if _, err := httputil.RequirePrincipal(ctx, h.logger); err != nil {
		httputil.WriteError(w, err)
		return
	}

	value, err := load(ctx)
	if err != nil {
		h.logError(ctx, "get issuance setting failed", err, "key", key.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.SettingResponse{Key: key.String(), Value: value})
}

func (h *Handler) logError(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err, "request_id", requestcontext.RequestID(ctx))
	if httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err)) < http.StatusInternalServerError {
		h.logger.WarnContext(ctx, msg, args...)
		return
	}
	h.logger.ErrorContext(ctx, msg, args...)
}
