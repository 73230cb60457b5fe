package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/Freeeeeet/studio_manager/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate - subject id или телефон уже заняты другим профилем
var ErrDuplicate = errors.New("duplicate profile")

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = `id, subject_id, phone, display_name, role, created_at, updated_at`

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var (
		profile model.Profile
		role    *string
	)
	err := row.Scan(
		&profile.ID,
		&profile.SubjectID,
		&profile.Phone,
		&profile.DisplayName,
		&role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if role != nil {
		r := model.Role(*role)
		profile.Role = &r
	}
	return &profile, nil
}

// Create создаёт профиль; ID генерируется здесь, если не задан
func (r *ProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}

	query := `
		INSERT INTO profiles (id, subject_id, phone, display_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		profile.ID,
		profile.SubjectID,
		profile.Phone,
		profile.DisplayName,
		roleArg(profile.Role),
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create profile: %w", ErrDuplicate)
		}
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}

// GetByID получает профиль по ID
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by id: %w", err)
	}

	return profile, nil
}

// FindBySubjectOrPhone возвращает все профили, совпавшие по subject id или телефону.
// Пустые значения в поиске не участвуют.
func (r *ProfileRepository) FindBySubjectOrPhone(ctx context.Context, subjectID, phone string) ([]*model.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE ($1 <> '' AND subject_id = $1)
		   OR ($2 <> '' AND phone = $2)
	`

	rows, err := r.pool.Query(ctx, query, subjectID, phone)
	if err != nil {
		return nil, fmt.Errorf("find profiles by subject or phone: %w", err)
	}
	defer rows.Close()

	var profiles []*model.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

// LinkSubject привязывает subject id к профилю, у которого его ещё нет
func (r *ProfileRepository) LinkSubject(ctx context.Context, id uuid.UUID, subjectID string) error {
	query := `
		UPDATE profiles
		SET subject_id = $1, updated_at = NOW()
		WHERE id = $2 AND subject_id IS NULL
	`

	result, err := r.pool.Exec(ctx, query, subjectID, id)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("link subject: %w", ErrDuplicate)
		}
		return fmt.Errorf("link subject: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile not found or already linked")
	}

	return nil
}

// UpdateRole меняет роль профиля
func (r *ProfileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	query := `
		UPDATE profiles
		SET role = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, string(role), id)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile not found")
	}

	return nil
}

// ListIDs возвращает ID всех профилей
func (r *ProfileRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM profiles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list profile ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect profile ids: %w", err)
	}

	return ids, nil
}

func roleArg(role *model.Role) *string {
	if role == nil {
		return nil
	}
	s := string(*role)
	return &s
}
