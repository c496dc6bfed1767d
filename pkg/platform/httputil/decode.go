package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/requestcontext"
)

// Normalizer trims or canonicalizes a decoded request before validation.
type Normalizer interface {
	Normalize()
}

// Validator rejects a decoded request. Errors without a domain code are
// reported as CodeValidation.
type Validator interface {
	Validate() error
}

// Decode reads one JSON object from the body into a T, then runs Normalize
// and Validate when *T implements them. On failure it writes the error
// response and returns false; the handler just returns.
//
//	req, ok := httputil.Decode[models.MintRequest](w, r, h.logger)
//	if !ok {
//		return
//	}
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	ctx := r.Context()
	req := new(T)

	if err := decodeStrict(r.Body, req); err != nil {
		logger.WarnContext(ctx, "malformed request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}

	if err := prepare(req); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		var de *dErrors.Error
		if !errors.As(err, &de) {
			err = dErrors.New(dErrors.CodeValidation, err.Error())
		}
		WriteError(w, err)
		return nil, false
	}
	return req, true
}

// decodeStrict rejects unknown fields and anything after the first value.
func decodeStrict(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

func prepare(req any) error {
	if n, ok := req.(Normalizer); ok {
		n.Normalize()
	}
	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}
