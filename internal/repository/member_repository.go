package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/Freeeeeet/studio_manager/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

const memberColumns = `id, profile_id, phone, name, type, status, join_date, created_at, updated_at`

func scanMember(row pgx.Row) (*model.Member, error) {
	var (
		member       model.Member
		memberType   string
		memberStatus string
	)
	err := row.Scan(
		&member.ID,
		&member.ProfileID,
		&member.Phone,
		&member.Name,
		&memberType,
		&memberStatus,
		&member.JoinDate,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	member.Type = model.MemberType(memberType)
	member.Status = model.MemberStatus(memberStatus)
	return &member, nil
}

// UpsertByPhone создаёт карточку или обновляет существующую с тем же телефоном.
// При повторном повышении дата вступления сохраняется, статус снова active.
func (r *MemberRepository) UpsertByPhone(ctx context.Context, member *model.Member) error {
	query := `
		INSERT INTO members (profile_id, phone, name, type, status, join_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (phone) DO UPDATE
		SET profile_id = EXCLUDED.profile_id,
		    name = EXCLUDED.name,
		    type = EXCLUDED.type,
		    status = EXCLUDED.status,
		    updated_at = NOW()
		RETURNING id, join_date, created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		member.ProfileID,
		member.Phone,
		member.Name,
		string(member.Type),
		string(member.Status),
		member.JoinDate,
	).Scan(&member.ID, &member.JoinDate, &member.CreatedAt, &member.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert member: %w", err)
	}

	return nil
}

// GetByID получает карточку по ID
func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	member, err := scanMember(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member by id: %w", err)
	}

	return member, nil
}

// List получает карточки; пустой status - все
func (r *MemberRepository) List(ctx context.Context, status model.MemberStatus) ([]*model.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE $1 = '' OR status = $1
		ORDER BY name, id
	`

	rows, err := r.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []*model.Member{}
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}

// UpdateStatus меняет статус; false если карточки нет
func (r *MemberRepository) UpdateStatus(ctx context.Context, id int64, status model.MemberStatus) (bool, error) {
	query := `
		UPDATE members
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, string(status), id)
	if err != nil {
		return false, fmt.Errorf("update member status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
