package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/Freeeeeet/studio_manager/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NoticeRepository struct {
	pool *pgxpool.Pool
}

func NewNoticeRepository(pool *pgxpool.Pool) *NoticeRepository {
	return &NoticeRepository{pool: pool}
}

func scanNotice(row pgx.Row) (*model.Notice, error) {
	var notice model.Notice
	err := row.Scan(
		&notice.ID,
		&notice.Title,
		&notice.Content,
		&notice.AuthorID,
		&notice.CreatedAt,
		&notice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &notice, nil
}

// Create создаёт объявление
func (r *NoticeRepository) Create(ctx context.Context, notice *model.Notice) error {
	query := `
		INSERT INTO notices (title, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, notice.Title, notice.Content, notice.AuthorID).
		Scan(&notice.ID, &notice.CreatedAt, &notice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create notice: %w", err)
	}

	return nil
}

// GetByID получает объявление по ID
func (r *NoticeRepository) GetByID(ctx context.Context, id int64) (*model.Notice, error) {
	query := `
		SELECT id, title, content, author_id, created_at, updated_at
		FROM notices
		WHERE id = $1
	`

	notice, err := scanNotice(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get notice by id: %w", err)
	}

	return notice, nil
}

// List получает объявления, новые первыми
func (r *NoticeRepository) List(ctx context.Context, limit, offset int) ([]*model.Notice, error) {
	query := `
		SELECT id, title, content, author_id, created_at, updated_at
		FROM notices
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	defer rows.Close()

	notices := []*model.Notice{}
	for rows.Next() {
		notice, err := scanNotice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notice: %w", err)
		}
		notices = append(notices, notice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notices: %w", err)
	}

	return notices, nil
}

// Update обновляет заголовок и текст
func (r *NoticeRepository) Update(ctx context.Context, notice *model.Notice) error {
	query := `
		UPDATE notices
		SET title = $1, content = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, notice.Title, notice.Content, notice.ID).Scan(&notice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}

	return nil
}

// Delete удаляет объявление; false если его нет
func (r *NoticeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete notice: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
