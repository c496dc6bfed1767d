package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "zkid/pkg/domain-errors"
)

type plainRequest struct {
	Subject string `json:"subject"`
}

type preparedRequest struct {
	Subject    string `json:"subject"`
	Expiration uint64 `json:"expiration"`
	normalized bool
}

func (r *preparedRequest) Normalize() {
	r.normalized = true
	r.Subject = strings.TrimSpace(r.Subject)
}

func (r *preparedRequest) Validate() error {
	if r.Subject == "" {
		return errors.New("subject is required")
	}
	if r.Expiration == 1 {
		return dErrors.New(dErrors.CodeBadRequest, "expiration already passed")
	}
	return nil
}

func decode[T any](t *testing.T, body string) (*T, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/admin/credentials", strings.NewReader(body))
	got, ok := Decode[T](w, r, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, ok, got != nil)
	return got, w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDecodeMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"empty":         "",
		"syntax":        `{"subject":`,
		"unknown field": `{"subject":"alice","caller":"root"}`,
		"trailing data": `{"subject":"alice"} {"subject":"bob"}`,
		"wrong type":    `{"subject":42}`,
	} {
		t.Run(name, func(t *testing.T) {
			got, w := decode[plainRequest](t, body)
			assert.Nil(t, got)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "bad_request", errorBody(t, w)["error"])
		})
	}
}

func TestDecodePlain(t *testing.T) {
	got, w := decode[plainRequest](t, `{"subject":"alice"}`)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Subject)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDecodePrepares(t *testing.T) {
	t.Run("normalizes before validating", func(t *testing.T) {
		got, _ := decode[preparedRequest](t, `{"subject":"  alice  ","expiration":5}`)
		require.NotNil(t, got)
		assert.True(t, got.normalized)
		assert.Equal(t, "alice", got.Subject)
	})

	t.Run("plain validation error becomes validation_failed", func(t *testing.T) {
		got, w := decode[preparedRequest](t, `{"subject":"   "}`)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := errorBody(t, w)
		assert.Equal(t, "validation_failed", body["error"])
		assert.Equal(t, "subject is required", body["error_description"])
	})

	t.Run("domain error keeps its code", func(t *testing.T) {
		got, w := decode[preparedRequest](t, `{"subject":"alice","expiration":1}`)
		assert.Nil(t, got)
		assert.Equal(t, "bad_request", errorBody(t, w)["error"])
	})
}
