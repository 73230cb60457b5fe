package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/Freeeeeet/studio_manager/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PermissionRepository struct {
	*base.Repository
}

func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{Repository: base.NewRepository(pool)}
}

// ListByProfile получает сохранённые доступы профиля
func (r *PermissionRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*model.MenuPermission, error) {
	query := `
		SELECT profile_id, permission_key, granted, updated_at
		FROM menu_permissions
		WHERE profile_id = $1
	`

	rows, err := r.Pool().Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	var perms []*model.MenuPermission
	for rows.Next() {
		var (
			perm model.MenuPermission
			key  string
		)
		if err := rows.Scan(&perm.ProfileID, &key, &perm.Granted, &perm.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		perm.Key = model.MenuKey(key)
		perms = append(perms, &perm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return perms, nil
}

// InsertMissing добавляет только отсутствующие ключи; существующие строки не трогаются
func (r *PermissionRepository) InsertMissing(ctx context.Context, profileID uuid.UUID, set model.PermissionSet) error {
	query := `
		INSERT INTO menu_permissions (profile_id, permission_key, granted)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, permission_key) DO NOTHING
	`

	return r.WithTx(ctx, func(tx pgx.Tx) error {
		for key, granted := range set {
			if _, err := tx.Exec(ctx, query, profileID, string(key), granted); err != nil {
				return fmt.Errorf("insert permission %s: %w", key, err)
			}
		}
		return nil
	})
}

// ReplaceAll перезаписывает все ключи набора одной транзакцией
func (r *PermissionRepository) ReplaceAll(ctx context.Context, profileID uuid.UUID, set model.PermissionSet) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		for key, granted := range set {
			if err := upsertPermission(ctx, tx, profileID, key, granted); err != nil {
				return err
			}
		}
		return nil
	})
}

// Upsert сохраняет отдельный доступ
func (r *PermissionRepository) Upsert(ctx context.Context, profileID uuid.UUID, key model.MenuKey, granted bool) error {
	return upsertPermission(ctx, r.Pool(), profileID, key, granted)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertPermission(ctx context.Context, db execer, profileID uuid.UUID, key model.MenuKey, granted bool) error {
	query := `
		INSERT INTO menu_permissions (profile_id, permission_key, granted)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, permission_key)
		DO UPDATE SET granted = EXCLUDED.granted, updated_at = NOW()
	`

	if _, err := db.Exec(ctx, query, profileID, string(key), granted); err != nil {
		return fmt.Errorf("upsert permission %s: %w", key, err)
	}
	return nil
}
