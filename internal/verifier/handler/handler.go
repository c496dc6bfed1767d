// Package handler exposes a Verifier over HTTP for the standalone verifier service.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	contract "zkid/contracts/verifier"
	"zkid/internal/verifier"
	"zkid/pkg/platform/httputil"
	"zkid/pkg/platform/validation"
	"zkid/pkg/requestcontext"
)

// VerifyRequest is the decoded POST /verify body.
type VerifyRequest contract.VerifyRequest

// Validate bounds the payload before any cryptography runs.
func (r *VerifyRequest) Validate() error {
	return errors.Join(
		validation.CheckBytes("verification_key", r.VerificationKey, validation.MaxVerificationKeySize),
		validation.CheckBytes("proof", r.Proof, validation.MaxProofSize),
	)
}

// Handler serves verification requests.
type Handler struct {
	verifier verifier.Verifier
	logger   *slog.Logger
}

// New creates a verifier handler.
func New(v verifier.Verifier, logger *slog.Logger) *Handler {
	return &Handler{verifier: v, logger: logger}
}

// Register mounts the verify route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verify", h.HandleVerify)
}

// HandleVerify returns the verdict for a (key, proof) pair. A rejection is a
// 200 with accepted=false; only aborted verification yields an error status.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.Decode[VerifyRequest](w, r, h.logger)
	if !ok {
		return
	}

	out, err := h.verifier.VerifyProof(ctx, req.VerificationKey, req.Proof)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification aborted",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "proof verified",
		"accepted", out.Accepted,
		"proof_id", out.ProofID.String(),
		"request_id", requestID,
	)
	w.Header().Set("X-Contract-Version", contract.ContractVersion)
	httputil.WriteJSON(w, http.StatusOK, contract.VerifyResponse{
		Accepted: out.Accepted,
		ProofID:  out.ProofID.String(),
		Reason:   out.Reason,
	})
}
