package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/google/uuid"
)

// Интерфейсы хранилищ; реализации в пакете repository

type ProfileStore interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	FindBySubjectOrPhone(ctx context.Context, subjectID, phone string) ([]*model.Profile, error)
	LinkSubject(ctx context.Context, id uuid.UUID, subjectID string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type PermissionStore interface {
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*model.MenuPermission, error)
	InsertMissing(ctx context.Context, profileID uuid.UUID, set model.PermissionSet) error
	ReplaceAll(ctx context.Context, profileID uuid.UUID, set model.PermissionSet) error
	Upsert(ctx context.Context, profileID uuid.UUID, key model.MenuKey, granted bool) error
}

type MemberStore interface {
	UpsertByPhone(ctx context.Context, member *model.Member) error
	GetByID(ctx context.Context, id int64) (*model.Member, error)
	List(ctx context.Context, status model.MemberStatus) ([]*model.Member, error)
	UpdateStatus(ctx context.Context, id int64, status model.MemberStatus) (bool, error)
}

type LessonStore interface {
	ListCompletedByInstructor(ctx context.Context, instructorID uuid.UUID, from, to time.Time) ([]*model.LessonRecord, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByProfile(ctx context.Context, profileID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
	CountUnread(ctx context.Context, profileID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, profileID uuid.UUID, id int64) (bool, error)
	MarkAllRead(ctx context.Context, profileID uuid.UUID) (int64, error)
	Delete(ctx context.Context, profileID uuid.UUID, id int64) (bool, error)
	DeleteByNotice(ctx context.Context, noticeID int64) (int64, error)
	PurgeRead(ctx context.Context, olderThan time.Time) (int64, error)
}

type NoticeStore interface {
	Create(ctx context.Context, notice *model.Notice) error
	GetByID(ctx context.Context, id int64) (*model.Notice, error)
	List(ctx context.Context, limit, offset int) ([]*model.Notice, error)
	Update(ctx context.Context, notice *model.Notice) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// NoticeAnnouncer дублирует объявление во внешний канал (Telegram)
type NoticeAnnouncer interface {
	AnnounceNotice(ctx context.Context, notice *model.Notice) error
}
