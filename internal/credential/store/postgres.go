package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"zkid/internal/credential/models"
	id "zkid/pkg/domain"
	"zkid/pkg/platform/sentinel"
	"zkid/pkg/platform/tx"
)

// PostgresStore persists the registry and credentials in PostgreSQL.
// Statements run on the transaction carried by ctx when there is one.
type PostgresStore struct {
	db *sql.DB
	tx *tx.Postgres
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, tx: tx.NewPostgres(db)}
}

// CreateRegistry inserts the single registry row.
func (s *PostgresStore) CreateRegistry(ctx context.Context, r *models.Registry) error {
	if r == nil {
		return fmt.Errorf("registry is required")
	}
	query := `
		INSERT INTO credential_registry (id, owner, name, symbol, base_uri, total_supply, created_at)
		VALUES (1, $1, $2, $3, $4, 0, $5)
	`
	_, err := tx.ExecutorFor(ctx, s.db).ExecContext(ctx, query,
		r.Owner.String(),
		r.Name,
		r.Symbol,
		r.BaseURI,
		r.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("registry already initialized: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create registry: %w", err)
	}
	return nil
}

// FindRegistry loads the registry row.
func (s *PostgresStore) FindRegistry(ctx context.Context) (*models.Registry, error) {
	query := `
		SELECT owner, name, symbol, base_uri, total_supply, created_at
		FROM credential_registry
		WHERE id = 1
	`
	var (
		r      models.Registry
		owner  string
		supply int64
	)
	err := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx, query).
		Scan(&owner, &r.Name, &r.Symbol, &r.BaseURI, &supply, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find registry: %w", err)
	}
	r.Owner = id.Principal(owner)
	r.TotalSupply = uint64(supply)
	return &r, nil
}

// Append reserves the next token id with a row-locked supply increment and
// inserts the credential in the same transaction.
func (s *PostgresStore) Append(ctx context.Context, owner id.Principal, expiration uint64, issuedAt time.Time) (*models.Credential, error) {
	var minted *models.Credential
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		exec := tx.ExecutorFor(ctx, s.db)

		var tokenID int64
		err := exec.QueryRowContext(ctx, `
			UPDATE credential_registry
			SET total_supply = total_supply + 1
			WHERE id = 1
			RETURNING total_supply - 1
		`).Scan(&tokenID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("reserve token id: %w", err)
		}

		_, err = exec.ExecContext(ctx, `
			INSERT INTO credentials (token_id, owner, expiration, issued_at)
			VALUES ($1, $2, $3::numeric, $4)
		`, tokenID, owner.String(), strconv.FormatUint(expiration, 10), issuedAt)
		if err != nil {
			return fmt.Errorf("insert credential: %w", err)
		}

		minted = &models.Credential{
			TokenID:    id.TokenID(tokenID),
			Owner:      owner,
			Expiration: expiration,
			IssuedAt:   issuedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return minted, nil
}

// FindCredential loads one credential by id.
func (s *PostgresStore) FindCredential(ctx context.Context, tokenID id.TokenID) (*models.Credential, error) {
	if uint64(tokenID) > maxBigint {
		return nil, sentinel.ErrNotFound
	}
	query := `
		SELECT token_id, owner, expiration::text, issued_at
		FROM credentials
		WHERE token_id = $1
	`
	c, err := scanCredential(tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx, query, int64(tokenID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return c, nil
}

// CountByOwner returns how many credentials owner holds.
func (s *PostgresStore) CountByOwner(ctx context.Context, owner id.Principal) (uint64, error) {
	var count int64
	err := tx.ExecutorFor(ctx, s.db).
		QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials WHERE owner = $1`, owner.String()).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count credentials by owner: %w", err)
	}
	return uint64(count), nil
}

// FindByOwnerIndex returns the index-th credential of owner in mint order.
func (s *PostgresStore) FindByOwnerIndex(ctx context.Context, owner id.Principal, index uint64) (id.TokenID, error) {
	if index > maxBigint {
		return 0, sentinel.ErrNotFound
	}
	query := `
		SELECT token_id
		FROM credentials
		WHERE owner = $1
		ORDER BY token_id
		OFFSET $2
		LIMIT 1
	`
	var tokenID int64
	err := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx, query, owner.String(), int64(index)).Scan(&tokenID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("find credential by owner index: %w", err)
	}
	return id.TokenID(tokenID), nil
}

const maxBigint = 1<<63 - 1

func scanCredential(row *sql.Row) (*models.Credential, error) {
	var (
		c          models.Credential
		tokenID    int64
		owner      string
		expiration string
	)
	if err := row.Scan(&tokenID, &owner, &expiration, &c.IssuedAt); err != nil {
		return nil, err
	}
	exp, err := strconv.ParseUint(expiration, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse expiration %q: %w", expiration, err)
	}
	c.TokenID = id.TokenID(tokenID)
	c.Owner = id.Principal(owner)
	c.Expiration = exp
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
