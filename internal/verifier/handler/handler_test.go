package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	contract "zkid/contracts/verifier"
	"zkid/internal/verifier"
	"zkid/internal/verifier/mocks"
	dErrors "zkid/pkg/domain-errors"
)

type HandlerSuite struct {
	suite.Suite
	router   http.Handler
	ctrl     *gomock.Controller
	verifier *mocks.MockVerifier
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.verifier = mocks.NewMockVerifier(s.ctrl)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	New(s.verifier, logger).Register(r)
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) post(body any) *httptest.ResponseRecorder {
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		s.Require().NoError(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestVerdicts() {
	vk, proof := []byte("vk"), []byte("proof")
	id := verifier.Fingerprint(vk, proof)

	s.Run("accepted", func() {
		s.verifier.EXPECT().VerifyProof(gomock.Any(), vk, proof).Return(verifier.Accept(id), nil)

		rec := s.post(contract.VerifyRequest{VerificationKey: vk, Proof: proof})
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(contract.ContractVersion, rec.Header().Get("X-Contract-Version"))

		var resp contract.VerifyResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.True(resp.Accepted)
		s.Equal(id.String(), resp.ProofID)
	})

	s.Run("rejected is still a 200", func() {
		s.verifier.EXPECT().VerifyProof(gomock.Any(), vk, proof).Return(verifier.Reject(id, "proof does not verify"), nil)

		rec := s.post(contract.VerifyRequest{VerificationKey: vk, Proof: proof})
		s.Equal(http.StatusOK, rec.Code)

		var resp contract.VerifyResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.False(resp.Accepted)
		s.Equal("proof does not verify", resp.Reason)
	})
}

func (s *HandlerSuite) TestAbortedVerification() {
	s.verifier.EXPECT().VerifyProof(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(verifier.Outcome{}, dErrors.Wrap(errors.New("ctx"), dErrors.CodeTimeout, "verification cancelled"))

	rec := s.post(contract.VerifyRequest{VerificationKey: []byte("vk"), Proof: []byte("p")})
	s.Equal(http.StatusGatewayTimeout, rec.Code)
}

func (s *HandlerSuite) TestInvalidRequests() {
	s.Run("invalid json", func() {
		rec := s.post("not json")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("missing proof", func() {
		rec := s.post(contract.VerifyRequest{VerificationKey: []byte("vk")})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(rec.Body.String(), "proof is required")
	})

	s.Run("oversized key", func() {
		rec := s.post(contract.VerifyRequest{VerificationKey: make([]byte, 9*1024), Proof: []byte("p")})
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
