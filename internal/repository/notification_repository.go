package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create создаёт уведомление
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (profile_id, notice_id, title, message, type, is_read, read_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		n.ProfileID,
		n.NoticeID,
		n.Title,
		n.Message,
		string(n.Type),
		n.IsRead,
		n.ReadAt,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// ListByProfile получает уведомления профиля, новые первыми
func (r *NotificationRepository) ListByProfile(ctx context.Context, profileID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	query := `
		SELECT id, profile_id, notice_id, title, message, type, is_read, read_at, created_at
		FROM notifications
		WHERE profile_id = $1 AND (NOT $2 OR is_read = FALSE)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, profileID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*model.Notification{}
	for rows.Next() {
		var (
			n     model.Notification
			nType string
		)
		err := rows.Scan(
			&n.ID,
			&n.ProfileID,
			&n.NoticeID,
			&n.Title,
			&n.Message,
			&nType,
			&n.IsRead,
			&n.ReadAt,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = model.NotificationType(nType)
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// CountUnread считает непрочитанные уведомления профиля
func (r *NotificationRepository) CountUnread(ctx context.Context, profileID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE profile_id = $1 AND is_read = FALSE`,
		profileID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead отмечает уведомление прочитанным; false если у профиля такого нет
func (r *NotificationRepository) MarkRead(ctx context.Context, profileID uuid.UUID, id int64) (bool, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND profile_id = $2
	`

	result, err := r.pool.Exec(ctx, query, id, profileID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// MarkAllRead отмечает прочитанными все уведомления профиля
func (r *NotificationRepository) MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE profile_id = $1 AND is_read = FALSE
	`

	result, err := r.pool.Exec(ctx, query, profileID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return result.RowsAffected(), nil
}

// Delete удаляет уведомление владельца; false если у профиля такого нет
func (r *NotificationRepository) Delete(ctx context.Context, profileID uuid.UUID, id int64) (bool, error) {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND profile_id = $2`,
		id, profileID,
	)
	if err != nil {
		return false, fmt.Errorf("delete notification: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// DeleteByNotice удаляет копии объявления
func (r *NotificationRepository) DeleteByNotice(ctx context.Context, noticeID int64) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE notice_id = $1`, noticeID)
	if err != nil {
		return 0, fmt.Errorf("delete notice notifications: %w", err)
	}

	return result.RowsAffected(), nil
}

// PurgeRead удаляет прочитанные уведомления, созданные раньше olderThan
func (r *NotificationRepository) PurgeRead(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM notifications WHERE is_read = TRUE AND created_at < $1`,
		olderThan,
	)
	if err != nil {
		return 0, fmt.Errorf("purge read notifications: %w", err)
	}

	return result.RowsAffected(), nil
}

