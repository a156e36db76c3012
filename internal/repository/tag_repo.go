package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"gift-store-api/internal/model"
)

type TagRepository struct {
	pool *pgxpool.Pool
}

func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{pool: pool}
}

func (r *TagRepository) FindByID(ctx context.Context, id string) (model.Tag, error) {
	var t model.Tag
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM tags WHERE id = $1`, id).
		Scan(&t.ID, &t.Name)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Tag{}, model.ErrTagNotFound
	}
	if err != nil {
		return model.Tag{}, fmt.Errorf("find tag: %w", err)
	}
	return t, nil
}

func (r *TagRepository) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
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

func (r *TagRepository) Create(ctx context.Context, t model.Tag) (model.Tag, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO tags (id, name) VALUES ($1, $2)`, t.ID, t.Name)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return model.Tag{}, model.ErrTagAlreadyExists
	}
	if err != nil {
		return model.Tag{}, fmt.Errorf("create tag: %w", err)
	}
	return t, nil
}

func (r *TagRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTagNotFound
	}
	return nil
}
