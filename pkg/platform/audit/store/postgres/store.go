// Package postgres persists the audit trail in the audit_events table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	audit "zkid/pkg/platform/audit"
)

// Store is append-only; rows are never updated or deleted.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// eventColumns is shared by the insert and the scans, in Event field order.
const eventColumns = `timestamp, action, actor, subject, token_id, decision, reason, proof_fingerprint, request_id`

func (s *Store) Append(ctx context.Context, e audit.Event) error {
	// v7 ids sort by creation time, breaking ties between equal timestamps.
	rowID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("audit event id: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, `+eventColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rowID, e.Timestamp, e.Action, e.Actor, e.Subject, e.TokenID,
		e.Decision, e.Reason, e.ProofFingerprint, e.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubject returns the subject's trail, newest first.
func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	return s.query(ctx,
		`SELECT `+eventColumns+` FROM audit_events WHERE subject = $1 ORDER BY timestamp DESC, id DESC`,
		subject)
}

// ListRecent returns up to limit events, newest first. A non-positive limit
// returns everything.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		return s.query(ctx, `SELECT `+eventColumns+` FROM audit_events ORDER BY timestamp DESC, id DESC`)
	}
	return s.query(ctx,
		`SELECT `+eventColumns+` FROM audit_events ORDER BY timestamp DESC, id DESC LIMIT $1`,
		limit)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		if err := rows.Scan(&e.Timestamp, &e.Action, &e.Actor, &e.Subject, &e.TokenID,
			&e.Decision, &e.Reason, &e.ProofFingerprint, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
