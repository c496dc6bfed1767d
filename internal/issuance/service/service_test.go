package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	credmodels "zkid/internal/credential/models"
	credservice "zkid/internal/credential/service"
	credstore "zkid/internal/credential/store"
	"zkid/internal/issuance/models"
	"zkid/internal/issuance/resolver"
	"zkid/internal/issuance/service/mocks"
	"zkid/internal/issuance/store"
	"zkid/internal/verifier"
	"zkid/internal/verifier/schnorr"
	id "zkid/pkg/domain"
	dErrors "zkid/pkg/domain-errors"
	"zkid/pkg/platform/audit"
	"zkid/pkg/platform/audit/publisher"
	auditmemory "zkid/pkg/platform/audit/store/memory"
	"zkid/pkg/platform/sentinel"
	"zkid/pkg/platform/tx"
	"zkid/pkg/requestcontext"
	"zkid/pkg/testutil"
)

const (
	admin   id.Principal = "issuer@zkid"
	user    id.Principal = "user-u"
	mallory id.Principal = "mallory"

	schnorrRef id.Reference = "verifier/schnorr"
	acceptRef  id.Reference = "verifier/accept"
	rejectRef  id.Reference = "verifier/reject"
	storeRef   id.Reference = "store/primary"

	t0       = 1_700_000_000
	yearFrom = t0 + 31_536_000
)

// IssuanceSuite wires the orchestrator to the in-memory credential registry
// and real verifiers, so properties are checked end to end.
type IssuanceSuite struct {
	suite.Suite
	ctx         context.Context
	audit       *auditmemory.InMemoryStore
	credentials *credservice.Service
	resolver    *resolver.Resolver
	service     *Service
	key         schnorr.VerificationKey
	vk          []byte
	proof       []byte
}

func TestIssuanceSuite(t *testing.T) {
	suite.Run(t, new(IssuanceSuite))
}

func (s *IssuanceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Unix(t0, 0))
	s.audit = auditmemory.NewInMemoryStore()
	runner := tx.NewInMemory()

	s.credentials = credservice.New(credstore.NewInMemory(), credservice.WithTx(runner))
	_, err := s.credentials.Initialize(s.ctx, credmodels.InitializeRequest{
		Caller: admin,
		Owner:  admin,
		Name:   "ZK Credential",
		Symbol: "ZKID",
	})
	s.Require().NoError(err)

	s.resolver = resolver.New()
	s.Require().NoError(s.resolver.RegisterVerifier(schnorrRef, schnorr.New()))
	s.Require().NoError(s.resolver.RegisterVerifier(acceptRef, testutil.AcceptingVerifier()))
	s.Require().NoError(s.resolver.RegisterVerifier(rejectRef, testutil.RejectingVerifier("always rejects")))
	s.Require().NoError(s.resolver.RegisterStore(storeRef, s.credentials))

	s.service = New(store.NewInMemory(), s.resolver,
		WithTx(runner),
		WithAuditPublisher(publisher.New(s.audit)),
	)

	proof := testutil.NewProof(s.T(), user)
	s.key, s.vk, s.proof = proof.Key, proof.VerificationKey, proof.Proof
}

func (s *IssuanceSuite) initialize(verifierRef id.Reference) {
	s.Require().NoError(s.service.Initialize(s.ctx, models.InitializeRequest{
		Caller:      admin,
		Admin:       admin,
		VerifierRef: verifierRef,
		StoreRef:    storeRef,
	}))
}

func (s *IssuanceSuite) mintRequest(caller id.Principal, expiration uint64) models.MintRequest {
	return models.MintRequest{
		Caller:          caller,
		Subject:         user,
		Expiration:      expiration,
		VerificationKey: s.vk,
		Proof:           s.proof,
	}
}

func (s *IssuanceSuite) totalSupply() uint64 {
	r, err := s.credentials.Registry(s.ctx)
	s.Require().NoError(err)
	return r.TotalSupply
}

func (s *IssuanceSuite) TestInitialize() {
	s.Run("caller must be the administrator it registers", func() {
		err := s.service.Initialize(s.ctx, models.InitializeRequest{
			Caller: mallory, Admin: admin, VerifierRef: acceptRef, StoreRef: storeRef,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects unresolvable references", func() {
		err := s.service.Initialize(s.ctx, models.InitializeRequest{
			Caller: admin, Admin: admin, VerifierRef: "verifier/missing", StoreRef: storeRef,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		err = s.service.Initialize(s.ctx, models.InitializeRequest{
			Caller: admin, Admin: admin, VerifierRef: acceptRef, StoreRef: "store/missing",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects empty fields", func() {
		err := s.service.Initialize(s.ctx, models.InitializeRequest{Caller: admin, Admin: admin})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("stores settings once", func() {
		s.initialize(acceptRef)

		got, err := s.service.GetAdmin(s.ctx)
		s.Require().NoError(err)
		s.Equal(admin, got)
		ref, err := s.service.GetVerifierReference(s.ctx)
		s.Require().NoError(err)
		s.Equal(acceptRef, ref)
		ref, err = s.service.GetStoreReference(s.ctx)
		s.Require().NoError(err)
		s.Equal(storeRef, ref)

		err = s.service.Initialize(s.ctx, models.InitializeRequest{
			Caller: admin, Admin: admin, VerifierRef: rejectRef, StoreRef: storeRef,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyInitialized))

		ref, err = s.service.GetVerifierReference(s.ctx)
		s.Require().NoError(err)
		s.Equal(acceptRef, ref, "second initialize must not overwrite settings")

		events, err := s.audit.ListRecent(s.ctx, 10)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventIssuanceInitialized), events[0].Action)
	})
}

func (s *IssuanceSuite) TestInitializeConcurrent() {
	result := testutil.RunConcurrent(16, func(int) error {
		return s.service.Initialize(s.ctx, models.InitializeRequest{
			Caller: admin, Admin: admin, VerifierRef: acceptRef, StoreRef: storeRef,
		})
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(15), result.Conflicts)
	s.Zero(result.Errors)
}

func (s *IssuanceSuite) TestNotInitialized() {
	_, err := s.service.MintCredential(s.ctx, s.mintRequest(admin, yearFrom))
	s.True(dErrors.HasCode(err, dErrors.CodeNotInitialized))

	_, err = s.service.GetAdmin(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeNotInitialized))
	_, err = s.service.GetVerifierReference(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeNotInitialized))
	_, err = s.service.GetStoreReference(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeNotInitialized))

	s.Zero(s.totalSupply())
}

func (s *IssuanceSuite) TestMintWithAcceptingVerifier() {
	s.initialize(acceptRef)

	result, err := s.service.MintCredential(s.ctx, s.mintRequest(admin, yearFrom))
	s.Require().NoError(err)
	s.Equal(id.TokenID(0), result.TokenID)
	s.Equal(user, result.Subject)
	s.Equal(verifier.Fingerprint(s.vk, s.proof), result.ProofID)

	exp, err := s.credentials.GetExpiration(s.ctx, 0)
	s.Require().NoError(err)
	s.Equal(uint64(yearFrom), exp)

	expired, err := s.credentials.IsExpired(s.ctx, 0)
	s.Require().NoError(err)
	s.False(expired)

	owner, err := s.credentials.OwnerOf(s.ctx, 0)
	s.Require().NoError(err)
	s.Equal(user, owner)

	events, err := s.audit.ListBySubject(s.ctx, user.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventCredentialIssued), events[0].Action)
	s.Equal("0", events[0].TokenID)
	s.Equal(result.ProofID.String(), events[0].ProofFingerprint)
}

func (s *IssuanceSuite) TestMintWithSchnorrProof() {
	s.initialize(schnorrRef)

	result, err := s.service.MintCredential(s.ctx, s.mintRequest(admin, yearFrom))
	s.Require().NoError(err)
	s.Equal(id.TokenID(0), result.TokenID)

	s.Run("proof for another context is rejected", func() {
		other := s.key
		other.Context = "other-service"
		vk, err := other.Marshal()
		s.Require().NoError(err)

		req := s.mintRequest(admin, yearFrom)
		req.VerificationKey = vk
		_, err = s.service.MintCredential(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeVerificationFailed))
		s.Equal(uint64(1), s.totalSupply())
	})
}

func (s *IssuanceSuite) TestMintWithRejectingVerifier() {
	s.initialize(rejectRef)

	_, err := s.service.MintCredential(s.ctx, s.mintRequest(admin, yearFrom))
	s.True(dErrors.HasCode(err, dErrors.CodeVerificationFailed))
	s.Zero(s.totalSupply())

	exp, err := s.credentials.GetExpiration(s.ctx, 0)
	s.Require().NoError(err)
	s.Zero(exp)

	events, err := s.audit.ListBySubject(s.ctx, user.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventIssuanceRejected), events[0].Action)
	s.Equal(audit.DecisionDenied, events[0].Decision)
	s.Equal(verifier.Fingerprint(s.vk, s.proof).String(), events[0].ProofFingerprint)
}

func (s *IssuanceSuite) TestMintByNonAdmin() {
	s.initialize(acceptRef)

	for _, caller := range []id.Principal{mallory, user} {
		_, err := s.service.MintCredential(s.ctx, s.mintRequest(caller, yearFrom))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "caller %s", caller)
	}
	s.Zero(s.totalSupply())

	balance, err := s.credentials.Balance(s.ctx, user)
	s.Require().NoError(err)
	s.Zero(balance)
}

func (s *IssuanceSuite) TestMintMaxExpiration() {
	s.initialize(acceptRef)

	result, err := s.service.MintCredential(s.ctx, s.mintRequest(admin, math.MaxUint64))
	s.Require().NoError(err)

	later := requestcontext.WithTime(s.ctx, time.Unix(4_102_444_800, 0))
	expired, err := s.credentials.IsExpired(later, result.TokenID)
	s.Require().NoError(err)
	s.False(expired)
}

func (s *IssuanceSuite) TestSequentialIDs() {
	s.initialize(acceptRef)

	for want := range 5 {
		result, err := s.service.MintCredential(s.ctx, s.mintRequest(admin, yearFrom))
		s.Require().NoError(err)
		s.Equal(id.TokenID(want), result.TokenID)

		// a rejected attempt in between must not consume an id
		req := s.mintRequest(mallory, yearFrom)
		_, err = s.service.MintCredential(s.ctx, req)
		s.Require().Error(err)
	}
	s.Equal(uint64(5), s.totalSupply())
}

func (s *IssuanceSuite) TestConcurrentMintsProduceDistinctIDs() {
	s.initialize(acceptRef)

	const n = 32
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[id.TokenID]struct{}, n)
	)
	for range n {
		wg.Go(func() {
			result, err := s.service.MintCredential(s.ctx, s.mintRequest(admin, yearFrom))
			s.NoError(err)
			if err != nil {
				return
			}
			mu.Lock()
			seen[result.TokenID] = struct{}{}
			mu.Unlock()
		})
	}
	wg.Wait()

	s.Len(seen, n)
	for i := range n {
		s.Contains(seen, id.TokenID(i))
	}
}

func (s *IssuanceSuite) TestMintValidation() {
	s.initialize(acceptRef)

	req := s.mintRequest(admin, yearFrom)
	req.Proof = nil
	_, err := s.service.MintCredential(s.ctx, req)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	req = s.mintRequest(admin, yearFrom)
	req.Subject = ""
	_, err = s.service.MintCredential(s.ctx, req)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	s.Zero(s.totalSupply())
}

func (s *IssuanceSuite) TestReentrantMintIsRejected() {
	var nested error
	s.Require().NoError(s.resolver.RegisterVerifier("verifier/reentrant", verifier.Func(
		func(ctx context.Context, vk, proof []byte) (verifier.Outcome, error) {
			_, nested = s.service.MintCredential(ctx, s.mintRequest(admin, yearFrom))
			return verifier.Accept(verifier.Fingerprint(vk, proof)), nil
		})))
	s.initialize("verifier/reentrant")

	result, err := s.service.MintCredential(s.ctx, s.mintRequest(admin, yearFrom))
	s.Require().NoError(err)
	s.Equal(id.TokenID(0), result.TokenID)
	s.True(dErrors.HasCode(nested, dErrors.CodeConflict))
	s.Equal(uint64(1), s.totalSupply())
}

// MockedSuite covers failure classification with gomock collaborators.
type MockedSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	settings *mocks.MockSettingsStore
	caps     *mocks.MockCapabilities
	store    *mocks.MockCredentialStore
	service  *Service
	ctx      context.Context
	req      models.MintRequest
}

func TestMockedSuite(t *testing.T) {
	suite.Run(t, new(MockedSuite))
}

func (s *MockedSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.settings = mocks.NewMockSettingsStore(s.ctrl)
	s.caps = mocks.NewMockCapabilities(s.ctrl)
	s.store = mocks.NewMockCredentialStore(s.ctrl)
	s.service = New(s.settings, s.caps)
	s.ctx = context.Background()
	s.req = models.MintRequest{
		Caller:          admin,
		Subject:         user,
		Expiration:      yearFrom,
		VerificationKey: []byte("vk"),
		Proof:           []byte("proof"),
	}
}

func (s *MockedSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *MockedSuite) expectSettings() {
	s.settings.EXPECT().Get(gomock.Any(), models.DataKeyAdmin).Return(admin.String(), nil).AnyTimes()
	s.settings.EXPECT().Get(gomock.Any(), models.DataKeyVerifierRef).Return(acceptRef.String(), nil).AnyTimes()
	s.settings.EXPECT().Get(gomock.Any(), models.DataKeyStoreRef).Return(storeRef.String(), nil).AnyTimes()
}

func (s *MockedSuite) accepting() verifier.Verifier {
	return testutil.AcceptingVerifier()
}

func (s *MockedSuite) TestVerificationFailures() {
	s.expectSettings()

	s.Run("verifier cannot be resolved", func() {
		s.caps.EXPECT().Verifier(acceptRef).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.MintCredential(s.ctx, s.req)
		s.True(dErrors.HasCode(err, dErrors.CodeVerificationFailed))
	})

	s.Run("aborted call", func() {
		aborted := verifier.Func(func(context.Context, []byte, []byte) (verifier.Outcome, error) {
			return verifier.Outcome{}, dErrors.New(dErrors.CodeTimeout, "verifier timed out")
		})
		s.caps.EXPECT().Verifier(acceptRef).Return(aborted, nil)
		_, err := s.service.MintCredential(s.ctx, s.req)
		s.True(dErrors.HasCode(err, dErrors.CodeVerificationFailed))
		s.ErrorContains(err, "aborted")
	})

	s.Run("rejection keeps the reason", func() {
		s.caps.EXPECT().Verifier(acceptRef).Return(testutil.RejectingVerifier("proof invalid"), nil)
		_, err := s.service.MintCredential(s.ctx, s.req)
		s.True(dErrors.HasCode(err, dErrors.CodeVerificationFailed))
		s.ErrorContains(err, "proof invalid")
	})
}

func (s *MockedSuite) TestIssuanceFailures() {
	s.expectSettings()
	s.caps.EXPECT().Verifier(acceptRef).Return(s.accepting(), nil).AnyTimes()

	s.Run("store cannot be resolved", func() {
		s.caps.EXPECT().Store(storeRef).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.MintCredential(s.ctx, s.req)
		s.True(dErrors.HasCode(err, dErrors.CodeIssuanceFailed))
	})

	s.Run("nested mint fails", func() {
		s.caps.EXPECT().Store(storeRef).Return(s.store, nil)
		s.store.EXPECT().Mint(gomock.Any(), admin, user, uint64(yearFrom)).
			Return(id.TokenID(0), dErrors.New(dErrors.CodeUnauthorized, "only the registry owner may mint"))
		_, err := s.service.MintCredential(s.ctx, s.req)
		s.True(dErrors.HasCode(err, dErrors.CodeIssuanceFailed))
	})

	s.Run("mint succeeds", func() {
		s.caps.EXPECT().Store(storeRef).Return(s.store, nil)
		s.store.EXPECT().Mint(gomock.Any(), admin, user, uint64(yearFrom)).Return(id.TokenID(7), nil)
		result, err := s.service.MintCredential(s.ctx, s.req)
		s.Require().NoError(err)
		s.Equal(id.TokenID(7), result.TokenID)
	})
}

func (s *MockedSuite) TestVerificationRunsBeforeAnyWrite() {
	s.expectSettings()
	s.caps.EXPECT().Verifier(acceptRef).Return(testutil.RejectingVerifier(""), nil)
	s.caps.EXPECT().Store(gomock.Any()).Times(0)
	s.store.EXPECT().Mint(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.MintCredential(s.ctx, s.req)
	s.True(dErrors.HasCode(err, dErrors.CodeVerificationFailed))
}

func (s *MockedSuite) TestSettingsErrors() {
	s.Run("settings store failure is internal", func() {
		s.settings.EXPECT().Get(gomock.Any(), models.DataKeyAdmin).Return("", errors.New("connection reset"))
		_, err := s.service.MintCredential(s.ctx, s.req)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("missing verifier reference", func() {
		s.settings.EXPECT().Get(gomock.Any(), models.DataKeyAdmin).Return(admin.String(), nil)
		s.settings.EXPECT().Get(gomock.Any(), models.DataKeyVerifierRef).Return("", sentinel.ErrNotFound)
		_, err := s.service.MintCredential(s.ctx, s.req)
		s.True(dErrors.HasCode(err, dErrors.CodeNotInitialized))
	})

	s.Run("insert failure during initialize", func() {
		s.caps.EXPECT().Verifier(acceptRef).Return(s.accepting(), nil)
		s.caps.EXPECT().Store(storeRef).Return(s.store, nil)
		s.settings.EXPECT().InsertAll(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
		err := s.service.Initialize(s.ctx, models.InitializeRequest{
			Caller: admin, Admin: admin, VerifierRef: acceptRef, StoreRef: storeRef,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
