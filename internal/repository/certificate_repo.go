package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gift-store-api/internal/model"
)

type CertificateRepository struct {
	pool *pgxpool.Pool
}

func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{pool: pool}
}

func (r *CertificateRepository) FindByID(ctx context.Context, id string) (model.Certificate, error) {
	var c model.Certificate
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, price, duration_days, created_at, updated_at
		 FROM certificates WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.Price, &c.DurationDays, &c.CreatedAt, &c.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Certificate{}, model.ErrCertificateNotFound
	}
	if err != nil {
		return model.Certificate{}, fmt.Errorf("find certificate: %w", err)
	}

	c.Tags, err = r.tagsFor(ctx, c.ID)
	if err != nil {
		return model.Certificate{}, err
	}
	return c, nil
}

func (r *CertificateRepository) List(ctx context.Context, page int, limit int) ([]model.Certificate, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM certificates`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count certificates: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, price, duration_days, created_at, updated_at
		 FROM certificates ORDER BY created_at DESC, id
		 LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	certs := make([]model.Certificate, 0)
	for rows.Next() {
		var c model.Certificate
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Price, &c.DurationDays, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan certificate: %w", err)
		}
		certs = append(certs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range certs {
		certs[i].Tags, err = r.tagsFor(ctx, certs[i].ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return certs, total, nil
}

// Save upserts the certificate and rewrites its tag set. Tags are upserted by
// name inside the same transaction.
func (r *CertificateRepository) Save(ctx context.Context, c model.Certificate) (model.Certificate, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Certificate{}, fmt.Errorf("begin save certificate: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO certificates (id, name, description, price, duration_days, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE
		 SET name = EXCLUDED.name, description = EXCLUDED.description,
		     price = EXCLUDED.price, duration_days = EXCLUDED.duration_days,
		     updated_at = EXCLUDED.updated_at`,
		c.ID, c.Name, c.Description, c.Price, c.DurationDays, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return model.Certificate{}, fmt.Errorf("save certificate: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM certificate_tags WHERE certificate_id = $1`, c.ID); err != nil {
		return model.Certificate{}, fmt.Errorf("clear certificate tags: %w", err)
	}

	for i, tag := range c.Tags {
		var tagID string
		err := tx.QueryRow(ctx,
			`INSERT INTO tags (id, name) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			 RETURNING id`, tag.ID, tag.Name).Scan(&tagID)
		if err != nil {
			return model.Certificate{}, fmt.Errorf("upsert tag: %w", err)
		}
		c.Tags[i].ID = tagID

		_, err = tx.Exec(ctx,
			`INSERT INTO certificate_tags (certificate_id, tag_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, c.ID, tagID)
		if err != nil {
			return model.Certificate{}, fmt.Errorf("link certificate tag: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Certificate{}, fmt.Errorf("commit save certificate: %w", err)
	}
	return c, nil
}

func (r *CertificateRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM certificates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCertificateNotFound
	}
	return nil
}

func (r *CertificateRepository) tagsFor(ctx context.Context, certificateID string) ([]model.Tag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.name FROM tags t
		 JOIN certificate_tags ct ON ct.tag_id = t.id
		 WHERE ct.certificate_id = $1
		 ORDER BY t.name`, certificateID)
	if err != nil {
		return nil, fmt.Errorf("load certificate tags: %w", err)
	}
	defer rows.Close()

	tags := make([]model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
