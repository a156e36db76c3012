package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"gift-store-api/internal/model"
)

// TokenRepository is the append-only ledger of issued access tokens. Records
// are flagged expired/revoked but never deleted.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

const tokenColumns = `id, user_id, access_token, kind, ttl_ms, expired, revoked, created_at, updated_at`

func scanToken(row pgx.Row) (model.TokenRecord, error) {
	var rec model.TokenRecord
	var ttlMS int64
	err := row.Scan(&rec.ID, &rec.UserID, &rec.AccessToken, &rec.Kind, &ttlMS,
		&rec.Expired, &rec.Revoked, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return model.TokenRecord{}, err
	}
	rec.TTL = time.Duration(ttlMS) * time.Millisecond
	return rec, nil
}

// FindActive returns the ledger record for a token string that has not been
// expired or revoked.
func (r *TokenRepository) FindActive(ctx context.Context, accessToken string) (model.TokenRecord, error) {
	rec, err := scanToken(r.pool.QueryRow(ctx,
		`SELECT `+tokenColumns+` FROM tokens
		 WHERE access_token = $1 AND NOT expired AND NOT revoked`, accessToken))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.TokenRecord{}, model.ErrTokenNotFound
	}
	if err != nil {
		return model.TokenRecord{}, fmt.Errorf("find active token: %w", err)
	}
	return rec, nil
}

// FindAllValid returns every record for a user that is neither expired nor
// revoked.
func (r *TokenRepository) FindAllValid(ctx context.Context, userID string) ([]model.TokenRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tokenColumns+` FROM tokens
		 WHERE user_id = $1 AND NOT expired AND NOT revoked
		 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("find valid tokens: %w", err)
	}
	defer rows.Close()

	records := make([]model.TokenRecord, 0)
	for rows.Next() {
		rec, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

const upsertTokenSQL = `INSERT INTO tokens (id, user_id, access_token, kind, ttl_ms, expired, revoked, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	 ON CONFLICT (access_token) DO UPDATE
	 SET expired = EXCLUDED.expired, revoked = EXCLUDED.revoked, updated_at = EXCLUDED.updated_at`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertToken(ctx context.Context, db execer, rec model.TokenRecord) error {
	_, err := db.Exec(ctx, upsertTokenSQL,
		rec.ID, rec.UserID, rec.AccessToken, rec.Kind, rec.TTL.Milliseconds(),
		rec.Expired, rec.Revoked, rec.CreatedAt, rec.UpdatedAt)
	return err
}

// Save upserts a record keyed by its unique token string.
func (r *TokenRepository) Save(ctx context.Context, rec model.TokenRecord) (model.TokenRecord, error) {
	if err := upsertToken(ctx, r.pool, rec); err != nil {
		return model.TokenRecord{}, fmt.Errorf("save token: %w", err)
	}
	return rec, nil
}

// RevokeAllValidAndSave flags every valid record for the user as expired and
// revoked and inserts the freshly issued record, all in one transaction. The
// advisory lock keyed by the user id serializes the whole revoke-then-insert
// against any concurrent login or refresh for the same principal; row locks
// on the existing token rows would not block the other login's insert, so
// two racing logins could otherwise both end up with an active record.
func (r *TokenRepository) RevokeAllValidAndSave(ctx context.Context, userID string, rec model.TokenRecord) (model.TokenRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.TokenRecord{}, fmt.Errorf("begin revoke transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return model.TokenRecord{}, fmt.Errorf("lock principal: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE tokens SET expired = TRUE, revoked = TRUE, updated_at = $2
		 WHERE user_id = $1 AND NOT expired AND NOT revoked`,
		userID, time.Now().UTC()); err != nil {
		return model.TokenRecord{}, fmt.Errorf("revoke valid tokens: %w", err)
	}

	if err := upsertToken(ctx, tx, rec); err != nil {
		return model.TokenRecord{}, fmt.Errorf("save issued token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.TokenRecord{}, fmt.Errorf("commit revoke transaction: %w", err)
	}
	return rec, nil
}
