package service

import (
	"context"

	"github.com/Freeeeeet/studio_manager/internal/events"
	"github.com/Freeeeeet/studio_manager/internal/model"
	"go.uber.org/zap"
)

// Session - явный контекст сессии, собирается заново на каждый запрос
type Session struct {
	Profile     *model.Profile      `json:"profile"`
	Permissions model.PermissionSet `json:"permissions"`
}

// Allows проверяет доступ к разделу меню
func (s *Session) Allows(key model.MenuKey) bool {
	return s != nil && s.Permissions.Allows(key)
}

// IsAdmin проверяет роль администратора
func (s *Session) IsAdmin() bool {
	return s != nil && s.Profile.IsAdmin()
}

type SessionService struct {
	identity    *IdentityService
	permissions *PermissionService
	events      events.Publisher
	logger      *zap.Logger
}

func NewSessionService(identity *IdentityService, permissions *PermissionService, publisher events.Publisher, logger *zap.Logger) *SessionService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &SessionService{
		identity:    identity,
		permissions: permissions,
		events:      publisher,
		logger:      logger,
	}
}

// Load собирает сессию по токену
func (s *SessionService) Load(ctx context.Context, token string) (*Session, error) {
	profile, err := s.identity.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	perms, err := s.permissions.resolveFor(ctx, profile)
	if err != nil {
		return nil, err
	}

	return &Session{Profile: profile, Permissions: perms}, nil
}

// Refresh пересобирает сессию и уведомляет остальные вкладки профиля
func (s *SessionService) Refresh(ctx context.Context, token string) (*Session, error) {
	session, err := s.Load(ctx, token)
	if err != nil {
		return nil, err
	}

	ev := events.New(events.SessionRefresh, session.Profile.ID, session)
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("Failed to publish session refresh",
			zap.String("profile_id", session.Profile.ID.String()),
			zap.Error(err),
		)
	}

	return session, nil
}

// Register создаёт профиль при первом входе и возвращает сессию
func (s *SessionService) Register(ctx context.Context, token, displayName string) (*Session, bool, error) {
	profile, created, err := s.identity.Register(ctx, token, displayName)
	if err != nil {
		return nil, false, err
	}

	perms, err := s.permissions.resolveFor(ctx, profile)
	if err != nil {
		return nil, false, err
	}

	return &Session{Profile: profile, Permissions: perms}, created, nil
}
