//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	audit "zkid/pkg/platform/audit"
	"zkid/pkg/platform/audit/store/postgres"
	"zkid/pkg/testutil/containers"
)

type AuditStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestAuditStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
}

func (s *AuditStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_events"))
}

func (s *AuditStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	events := []audit.Event{
		{Timestamp: base, Action: string(audit.EventIssuanceInitialized), Actor: "issuer@zkid"},
		{
			Timestamp:        base.Add(time.Minute),
			Action:           string(audit.EventIssuanceRejected),
			Actor:            "issuer@zkid",
			Subject:          "alice",
			Decision:         audit.DecisionDenied,
			Reason:           "proof rejected",
			ProofFingerprint: "ab12",
		},
		{
			Timestamp:        base.Add(2 * time.Minute),
			Action:           string(audit.EventCredentialIssued),
			Actor:            "issuer@zkid",
			Subject:          "alice",
			TokenID:          "0",
			Decision:         audit.DecisionGranted,
			ProofFingerprint: "cd34",
			RequestID:        "req-1",
		},
	}
	for _, e := range events {
		s.Require().NoError(s.store.Append(ctx, e))
	}

	s.Run("by subject newest first", func() {
		got, err := s.store.ListBySubject(ctx, "alice")
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal(string(audit.EventCredentialIssued), got[0].Action)
		s.Equal("0", got[0].TokenID)
		s.Equal("req-1", got[0].RequestID)
		s.Equal("proof rejected", got[1].Reason)
	})

	s.Run("recent respects the limit", func() {
		got, err := s.store.ListRecent(ctx, 2)
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.True(got[0].Timestamp.After(got[1].Timestamp))
	})

	s.Run("unknown subject", func() {
		got, err := s.store.ListBySubject(ctx, "bob")
		s.Require().NoError(err)
		s.Empty(got)
	})
}
