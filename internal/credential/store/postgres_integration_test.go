//go:build integration

package store_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"zkid/internal/credential/models"
	"zkid/internal/credential/store"
	id "zkid/pkg/domain"
	"zkid/pkg/platform/sentinel"
	"zkid/pkg/platform/tx"
	"zkid/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "credentials", "credential_registry"))
}

func (s *PostgresStoreSuite) createRegistry() {
	s.Require().NoError(s.store.CreateRegistry(context.Background(), &models.Registry{
		Owner:     "issuer",
		Name:      "ZK Credential",
		Symbol:    "ZKID",
		BaseURI:   "https://zkid.example/",
		CreatedAt: time.Now(),
	}))
}

func (s *PostgresStoreSuite) TestRegistryIsSingleUse() {
	ctx := context.Background()

	_, err := s.store.FindRegistry(ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.createRegistry()
	err = s.store.CreateRegistry(ctx, &models.Registry{Owner: "other", Name: "n", Symbol: "s", CreatedAt: time.Now()})
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	r, err := s.store.FindRegistry(ctx)
	s.Require().NoError(err)
	s.Equal(id.Principal("issuer"), r.Owner)
}

func (s *PostgresStoreSuite) TestAppendStoresFullExpirationRange() {
	ctx := context.Background()
	s.createRegistry()

	c, err := s.store.Append(ctx, "alice", math.MaxUint64, time.Now())
	s.Require().NoError(err)
	s.Equal(id.TokenID(0), c.TokenID)

	loaded, err := s.store.FindCredential(ctx, 0)
	s.Require().NoError(err)
	s.Equal(uint64(math.MaxUint64), loaded.Expiration)
	s.Equal(id.Principal("alice"), loaded.Owner)
}

func (s *PostgresStoreSuite) TestAppendWithoutRegistry() {
	_, err := s.store.Append(context.Background(), "alice", 0, time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestOwnerIndex() {
	ctx := context.Background()
	s.createRegistry()
	for _, owner := range []id.Principal{"alice", "bob", "alice"} {
		_, err := s.store.Append(ctx, owner, 0, time.Now())
		s.Require().NoError(err)
	}

	n, err := s.store.CountByOwner(ctx, "alice")
	s.Require().NoError(err)
	s.Equal(uint64(2), n)

	tokenID, err := s.store.FindByOwnerIndex(ctx, "alice", 1)
	s.Require().NoError(err)
	s.Equal(id.TokenID(2), tokenID)

	_, err = s.store.FindByOwnerIndex(ctx, "alice", 2)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRollbackLeavesNoPartialMint() {
	ctx := context.Background()
	s.createRegistry()
	boom := errors.New("boom")

	err := tx.NewPostgres(s.postgres.DB).RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.Append(ctx, "alice", 0, time.Now()); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	r, err := s.store.FindRegistry(ctx)
	s.Require().NoError(err)
	s.Zero(r.TotalSupply)
	_, err = s.store.FindCredential(ctx, 0)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentAppendsAreSequential() {
	ctx := context.Background()
	s.createRegistry()

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Go(func() {
			_, err := s.store.Append(ctx, "alice", 0, time.Now())
			s.NoError(err)
		})
	}
	wg.Wait()

	r, err := s.store.FindRegistry(ctx)
	s.Require().NoError(err)
	s.Equal(uint64(n), r.TotalSupply)
	for i := range n {
		_, err := s.store.FindCredential(ctx, id.TokenID(i))
		s.NoError(err)
	}
}
