package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/events"
	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PermissionService struct {
	profiles ProfileStore
	perms    PermissionStore
	members  MemberStore
	events   events.Publisher
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

func NewPermissionService(
	profiles ProfileStore,
	perms PermissionStore,
	members MemberStore,
	publisher events.Publisher,
	loc *time.Location,
	logger *zap.Logger,
) *PermissionService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &PermissionService{
		profiles: profiles,
		perms:    perms,
		members:  members,
		events:   publisher,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// Resolve возвращает итоговый набор доступов профиля (всегда все шесть ключей)
func (s *PermissionService) Resolve(ctx context.Context, profileID uuid.UUID) (model.PermissionSet, error) {
	profile, err := s.getProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.resolveFor(ctx, profile)
}

// resolveFor накладывает сохранённые строки на таблицу роли.
// Недостающие ключи дописываются из таблицы; существующие строки не меняются.
func (s *PermissionService) resolveFor(ctx context.Context, profile *model.Profile) (model.PermissionSet, error) {
	rows, err := s.perms.ListByProfile(ctx, profile.ID)
	if err != nil {
		return nil, storeError("list permissions", err)
	}

	set := make(model.PermissionSet, len(model.AllMenuKeys))
	for _, row := range rows {
		if row.Key.Valid() {
			set[row.Key] = row.Granted
		}
	}

	defaults := model.DefaultPermissions(profile.Role)
	missing := model.PermissionSet{}
	for _, key := range model.AllMenuKeys {
		if _, ok := set[key]; !ok {
			missing[key] = defaults[key]
			set[key] = defaults[key]
		}
	}

	if len(missing) > 0 {
		if err := s.perms.InsertMissing(ctx, profile.ID, missing); err != nil {
			return nil, storeError("backfill permissions", err)
		}
		s.logger.Debug("Permissions backfilled",
			zap.String("profile_id", profile.ID.String()),
			zap.Int("keys", len(missing)),
		)
	}

	return set, nil
}

// SetRole меняет роль и сбрасывает все доступы на таблицу новой роли
func (s *PermissionService) SetRole(ctx context.Context, profileID uuid.UUID, roleName string) (*model.Profile, model.PermissionSet, error) {
	role, err := model.ParseRole(roleName)
	if err != nil {
		return nil, nil, ErrInvalidRole
	}

	profile, err := s.getProfile(ctx, profileID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.profiles.UpdateRole(ctx, profile.ID, role); err != nil {
		return nil, nil, storeError("update role", err)
	}
	profile.Role = &role

	defaults := model.DefaultPermissions(&role)
	if err := s.perms.ReplaceAll(ctx, profile.ID, defaults); err != nil {
		return nil, nil, storeError("reset permissions", err)
	}

	// роль уже сохранена, карточку участника синхронизируем без отката
	s.syncMember(ctx, profile, role)

	s.logger.Info("Profile role changed",
		zap.String("profile_id", profile.ID.String()),
		zap.String("role", string(role)),
	)

	s.publish(ctx, events.New(events.RoleChanged, profile.ID, map[string]any{
		"role":        role,
		"permissions": defaults,
	}))

	return profile, defaults, nil
}

// SetPermission переопределяет отдельный доступ
func (s *PermissionService) SetPermission(ctx context.Context, profileID uuid.UUID, keyName string, granted bool) (model.PermissionSet, error) {
	key := model.MenuKey(keyName)
	if !key.Valid() {
		return nil, validationError("unknown permission key %q", keyName)
	}

	profile, err := s.getProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if err := s.perms.Upsert(ctx, profile.ID, key, granted); err != nil {
		return nil, storeError("set permission", err)
	}

	set, err := s.resolveFor(ctx, profile)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Permission overridden",
		zap.String("profile_id", profile.ID.String()),
		zap.String("key", string(key)),
		zap.Bool("granted", granted),
	)

	s.publish(ctx, events.New(events.PermissionsChanged, profile.ID, set))
	return set, nil
}

// Require возвращает ErrForbidden, если доступ не выдан
func (s *PermissionService) Require(ctx context.Context, profileID uuid.UUID, key model.MenuKey) error {
	set, err := s.Resolve(ctx, profileID)
	if err != nil {
		return err
	}
	if !set.Allows(key) {
		return ErrForbidden
	}
	return nil
}

// syncMember заводит или обновляет карточку члена студии при назначении member/guest
func (s *PermissionService) syncMember(ctx context.Context, profile *model.Profile, role model.Role) {
	memberType, ok := role.MemberType()
	if !ok || profile.Phone == nil {
		return
	}

	y, m, d := s.now().In(s.loc).Date()
	member := &model.Member{
		ProfileID: &profile.ID,
		Phone:     *profile.Phone,
		Name:      profile.DisplayName,
		Type:      memberType,
		Status:    model.MemberStatusActive,
		JoinDate:  time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
	if err := s.members.UpsertByPhone(ctx, member); err != nil {
		s.logger.Warn("Failed to sync member record",
			zap.String("profile_id", profile.ID.String()),
			zap.String("type", string(memberType)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Member record synced",
		zap.Int64("member_id", member.ID),
		zap.String("profile_id", profile.ID.String()),
		zap.String("type", string(memberType)),
	)
}

func (s *PermissionService) getProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get profile", err)
	}
	if profile == nil {
		return nil, ErrNotFound
	}
	return profile, nil
}

func (s *PermissionService) publish(ctx context.Context, ev events.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("Failed to publish session event",
			zap.String("type", string(ev.Type)),
			zap.String("profile_id", ev.ProfileID.String()),
			zap.Error(err),
		)
	}
}
