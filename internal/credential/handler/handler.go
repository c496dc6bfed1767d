// Package handler serves the credential registry over HTTP.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"zkid/internal/credential/models"
	id "zkid/pkg/domain"
	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/platform/httputil"
	"zkid/pkg/requestcontext"
)

// Service defines the credential registry operations.
type Service interface {
	Initialize(ctx context.Context, req models.InitializeRequest) (*models.Registry, error)
	Registry(ctx context.Context) (*models.Registry, error)
	Credential(ctx context.Context, tokenID id.TokenID) (*models.Credential, error)
	GetExpiration(ctx context.Context, tokenID id.TokenID) (uint64, error)
	IsExpired(ctx context.Context, tokenID id.TokenID) (bool, error)
	OwnerOf(ctx context.Context, tokenID id.TokenID) (id.Principal, error)
	TokenURI(ctx context.Context, tokenID id.TokenID) (string, error)
	Balance(ctx context.Context, owner id.Principal) (uint64, error)
	TokenOfOwnerByIndex(ctx context.Context, owner id.Principal, index uint64) (id.TokenID, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public read routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/registry", h.HandleGetRegistry)
	r.Get("/credentials/{token_id}", h.HandleGetCredential)
	r.Get("/credentials/{token_id}/expiration", h.HandleGetExpiration)
	r.Get("/credentials/{token_id}/expired", h.HandleIsExpired)
	r.Get("/credentials/{token_id}/owner", h.HandleOwnerOf)
	r.Get("/credentials/{token_id}/uri", h.HandleTokenURI)
	r.Get("/owners/{principal}/balance", h.HandleBalance)
	r.Get("/owners/{principal}/credentials/{index}", h.HandleTokenOfOwnerByIndex)
}

// RegisterAdmin mounts routes that require an authenticated principal.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/registry/initialize", h.HandleInitialize)
}

// HandleInitialize creates the registry with the caller as owner.
func (h *Handler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

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

	registry, err := h.service.Initialize(ctx, *req)
	if err != nil {
		h.logger.ErrorContext(ctx, "initialize registry failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, models.ToRegistryResponse(registry))
}

func (h *Handler) HandleGetRegistry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	registry, err := h.service.Registry(ctx)
	if err != nil {
		h.logError(ctx, "get registry failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.ToRegistryResponse(registry))
}

// HandleGetCredential returns the full record, including the expired flag
// evaluated at request time.
func (h *Handler) HandleGetCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokenID, ok := h.tokenIDParam(w, r)
	if !ok {
		return
	}

	c, err := h.service.Credential(ctx, tokenID)
	if err != nil {
		h.logError(ctx, "get credential failed", err, "token_id", tokenID.String())
		httputil.WriteError(w, err)
		return
	}
	registry, err := h.service.Registry(ctx)
	if err != nil {
		h.logError(ctx, "get registry failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.CredentialResponse{
		TokenID:    uint64(c.TokenID),
		Owner:      c.Owner.String(),
		Expiration: c.Expiration,
		Expired:    c.ExpiredAt(requestcontext.Now(ctx)),
		TokenURI:   registry.TokenURI(c.TokenID),
		IssuedAt:   c.IssuedAt,
	})
}

func (h *Handler) HandleGetExpiration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokenID, ok := h.tokenIDParam(w, r)
	if !ok {
		return
	}

	exp, err := h.service.GetExpiration(ctx, tokenID)
	if err != nil {
		h.logError(ctx, "get expiration failed", err, "token_id", tokenID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.ExpirationResponse{TokenID: uint64(tokenID), Expiration: exp})
}

func (h *Handler) HandleIsExpired(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokenID, ok := h.tokenIDParam(w, r)
	if !ok {
		return
	}

	expired, err := h.service.IsExpired(ctx, tokenID)
	if err != nil {
		h.logError(ctx, "check expiry failed", err, "token_id", tokenID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.ExpiredResponse{TokenID: uint64(tokenID), Expired: expired})
}

func (h *Handler) HandleOwnerOf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokenID, ok := h.tokenIDParam(w, r)
	if !ok {
		return
	}

	owner, err := h.service.OwnerOf(ctx, tokenID)
	if err != nil {
		h.logError(ctx, "owner lookup failed", err, "token_id", tokenID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.OwnerResponse{TokenID: uint64(tokenID), Owner: owner.String()})
}

func (h *Handler) HandleTokenURI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokenID, ok := h.tokenIDParam(w, r)
	if !ok {
		return
	}

	uri, err := h.service.TokenURI(ctx, tokenID)
	if err != nil {
		h.logError(ctx, "token uri lookup failed", err, "token_id", tokenID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.TokenURIResponse{TokenID: uint64(tokenID), TokenURI: uri})
}

func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.principalParam(w, r)
	if !ok {
		return
	}

	balance, err := h.service.Balance(ctx, owner)
	if err != nil {
		h.logError(ctx, "balance lookup failed", err, "owner", owner.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.BalanceResponse{Owner: owner.String(), Balance: balance})
}

func (h *Handler) HandleTokenOfOwnerByIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.principalParam(w, r)
	if !ok {
		return
	}
	index, err := models.ParseIndex(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tokenID, err := h.service.TokenOfOwnerByIndex(ctx, owner, index)
	if err != nil {
		h.logError(ctx, "owner index lookup failed", err, "owner", owner.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.OwnedTokenResponse{Owner: owner.String(), Index: index, TokenID: uint64(tokenID)})
}

func (h *Handler) tokenIDParam(w http.ResponseWriter, r *http.Request) (id.TokenID, bool) {
	tokenID, err := id.ParseTokenID(chi.URLParam(r, "token_id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid token id"))
		return 0, false
	}
	return tokenID, true
}

func (h *Handler) principalParam(w http.ResponseWriter, r *http.Request) (id.Principal, bool) {
	p, err := id.ParsePrincipal(chi.URLParam(r, "principal"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid principal"))
		return "", false
	}
	return p, true
}

// logError logs at warn for client-visible failures and error for the rest.
func (h *Handler) logError(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err, "request_id", requestcontext.RequestID(ctx))
	if httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err)) < http.StatusInternalServerError {
		h.logger.WarnContext(ctx, msg, args...)
		return
	}
	h.logger.ErrorContext(ctx, msg, args...)
}
