package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"zkid/internal/issuance/models"
	"zkid/pkg/platform/sentinel"
	"zkid/pkg/platform/tx"
)

// PostgresStore persists settings in the issuance_settings table.
type PostgresStore struct {
	db *sql.DB
	tx *tx.Postgres
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, tx: tx.NewPostgres(db)}
}

// Get returns the value stored under key.
func (s *PostgresStore) Get(ctx context.Context, key models.DataKey) (string, error) {
	var value string
	err := tx.ExecutorFor(ctx, s.db).
		QueryRowContext(ctx, `SELECT value FROM issuance_settings WHERE key = $1`, key.String()).
		Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("find setting %s: %w", key, err)
	}
	return value, nil
}

// InsertAll inserts every value if absent. Any existing key aborts the whole
// write; concurrent initializers race on the primary key and exactly one wins.
func (s *PostgresStore) InsertAll(ctx context.Context, values map[models.DataKey]string) error {
	for key := range values {
		if !key.IsValid() {
			return fmt.Errorf("unknown setting %q: %w", key, sentinel.ErrInvalidInput)
		}
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		exec := tx.ExecutorFor(ctx, s.db)
		// Fixed key order keeps concurrent initializers from deadlocking.
		for _, key := range models.DataKeys {
			value, ok := values[key]
			if !ok {
				continue
			}
			res, err := exec.ExecContext(ctx, `
				INSERT INTO issuance_settings (key, value)
				VALUES ($1, $2)
				ON CONFLICT (key) DO NOTHING
			`, key.String(), value)
			if err != nil {
				return fmt.Errorf("insert setting %s: %w", key, err)
			}
			rows, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("insert setting %s rows: %w", key, err)
			}
			if rows == 0 {
				return fmt.Errorf("setting %s already set: %w", key, sentinel.ErrAlreadyUsed)
			}
		}
		return nil
	})
}
