package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"gift-store-api/internal/model"
)

// AuditRepository persists the security-event trail for auth operations.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Log(ctx context.Context, event model.SecurityEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO security_events (action, username, client_ip, status, error_text, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.Action, event.Username, event.ClientIP, event.Status, event.Error, event.OccurredAt)
	if err != nil {
		return fmt.Errorf("log security event: %w", err)
	}
	return nil
}

func (r *AuditRepository) Query(ctx context.Context, query model.SecurityEventQuery) ([]model.SecurityEvent, model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 200 {
		query.Limit = 200
	}

	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if query.Action != "" {
		args = append(args, query.Action)
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}
	if query.Username != "" {
		args = append(args, query.Username)
		where = append(where, fmt.Sprintf("lower(username) = lower($%d)", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM security_events`+clause, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count security events: %w", err)
	}

	args = append(args, query.Limit, (query.Page-1)*query.Limit)
	rows, err := r.pool.Query(ctx,
		`SELECT id, action, username, client_ip, status, error_text, occurred_at
		 FROM security_events`+clause+
			fmt.Sprintf(` ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query security events: %w", err)
	}
	defer rows.Close()

	events := make([]model.SecurityEvent, 0)
	for rows.Next() {
		var e model.SecurityEvent
		if err := rows.Scan(&e.ID, &e.Action, &e.Username, &e.ClientIP, &e.Status, &e.Error, &e.OccurredAt); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan security event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Meta{}, err
	}

	totalPages := (total + query.Limit - 1) / query.Limit
	meta := model.Meta{Page: query.Page, Limit: query.Limit, Total: total, TotalPages: totalPages}
	return events, meta, nil
}
