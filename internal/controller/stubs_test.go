package controller

import (
	"context"
	"errors"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/Freeeeeet/studio_manager/internal/service"
	"github.com/Freeeeeet/studio_manager/internal/settlement"
	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

type stubSessions struct {
	byToken   map[string]*service.Session
	refreshed int
	created   bool
}

func (s *stubSessions) Load(_ context.Context, token string) (*service.Session, error) {
	if token == "garbage" {
		return nil, service.ErrTokenDecode
	}
	session, ok := s.byToken[token]
	if !ok {
		return nil, service.ErrProfileNotFound
	}
	return session, nil
}

func (s *stubSessions) Refresh(ctx context.Context, token string) (*service.Session, error) {
	s.refreshed++
	return s.Load(ctx, token)
}

func (s *stubSessions) Register(_ context.Context, token, displayName string) (*service.Session, bool, error) {
	if token == "garbage" {
		return nil, false, service.ErrTokenDecode
	}
	if session, ok := s.byToken[token]; ok {
		return session, false, nil
	}
	var role *model.Role
	return &service.Session{
		Profile:     &model.Profile{ID: uuid.New(), DisplayName: displayName, Role: role},
		Permissions: model.DefaultPermissions(role),
	}, true, nil
}

type stubPermissions struct {
	lastRole string
	lastKey  string
}

func (s *stubPermissions) Resolve(_ context.Context, _ uuid.UUID) (model.PermissionSet, error) {
	return model.DefaultPermissions(nil), nil
}

func (s *stubPermissions) SetRole(_ context.Context, id uuid.UUID, roleName string) (*model.Profile, model.PermissionSet, error) {
	s.lastRole = roleName
	role, err := model.ParseRole(roleName)
	if err != nil {
		return nil, nil, service.ErrInvalidRole
	}
	return &model.Profile{ID: id, Role: &role}, model.DefaultPermissions(&role), nil
}

func (s *stubPermissions) SetPermission(_ context.Context, _ uuid.UUID, keyName string, granted bool) (model.PermissionSet, error) {
	s.lastKey = keyName
	key := model.MenuKey(keyName)
	if !key.Valid() {
		return nil, service.ErrValidation
	}
	set := model.DefaultPermissions(nil)
	set[key] = granted
	return set, nil
}

type stubNotices struct {
	published []string
}

func (s *stubNotices) Publish(_ context.Context, authorID uuid.UUID, title, content string) (*model.Notice, error) {
	if title == "" {
		return nil, service.ErrValidation
	}
	s.published = append(s.published, title)
	return &model.Notice{ID: int64(len(s.published)), Title: title, Content: content, AuthorID: authorID}, nil
}

func (s *stubNotices) Update(_ context.Context, _ uuid.UUID, id int64, title, content string) (*model.Notice, error) {
	return &model.Notice{ID: id, Title: title, Content: content}, nil
}

func (s *stubNotices) Delete(_ context.Context, _ uuid.UUID, id int64) error {
	if id != 1 {
		return service.ErrNotFound
	}
	return nil
}

func (s *stubNotices) Get(_ context.Context, id int64) (*model.Notice, error) {
	if id != 1 {
		return nil, service.ErrNotFound
	}
	return &model.Notice{ID: 1, Title: "Holiday"}, nil
}

func (s *stubNotices) List(_ context.Context, _, _ int) ([]*model.Notice, error) {
	return []*model.Notice{{ID: 1, Title: "Holiday"}}, nil
}

type stubNotifications struct{}

func (stubNotifications) List(_ context.Context, profileID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	list := []*model.Notification{{ID: 1, ProfileID: profileID}}
	if !unreadOnly {
		list = append(list, &model.Notification{ID: 2, ProfileID: profileID, IsRead: true})
	}
	return list, nil
}

func (stubNotifications) UnreadCount(context.Context, uuid.UUID) (int, error) { return 3, nil }

func (stubNotifications) Create(_ context.Context, _, recipientID uuid.UUID, title, message, _ string) (*model.Notification, error) {
	return &model.Notification{ID: 5, ProfileID: recipientID, Title: title, Message: message}, nil
}

func (stubNotifications) MarkRead(_ context.Context, _ uuid.UUID, id int64) error {
	if id != 1 {
		return service.ErrNotFound
	}
	return nil
}

func (stubNotifications) MarkAllRead(context.Context, uuid.UUID) (int64, error) { return 2, nil }

func (stubNotifications) Delete(context.Context, uuid.UUID, int64) error { return nil }

type stubSettlements struct {
	err error
}

func (s stubSettlements) Aggregate(_ context.Context, instructorID uuid.UUID, year, month int) (*settlement.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	if month < 1 || month > 12 {
		return nil, service.ErrValidation
	}
	return &settlement.Report{InstructorID: instructorID, Year: year, Month: month, PerMember: []settlement.MemberSettlement{}}, nil
}

type stubMembers struct{}

func (stubMembers) List(context.Context, string) ([]*model.Member, error) {
	return []*model.Member{{ID: 1, Name: "Kim"}}, nil
}

func (stubMembers) Get(_ context.Context, id int64) (*model.Member, error) {
	return &model.Member{ID: id, Name: "Kim"}, nil
}

func (stubMembers) SetStatus(_ context.Context, id int64, status string) (*model.Member, error) {
	return &model.Member{ID: id, Status: model.MemberStatus(status)}, nil
}
