package service

import (
	"context"
	"strings"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"go.uber.org/zap"
)

type MemberService struct {
	members MemberStore
	logger  *zap.Logger
}

func NewMemberService(members MemberStore, logger *zap.Logger) *MemberService {
	return &MemberService{
		members: members,
		logger:  logger,
	}
}

// List получает карточки; пустой фильтр - все статусы
func (s *MemberService) List(ctx context.Context, statusFilter string) ([]*model.Member, error) {
	status := model.MemberStatus(strings.ToLower(strings.TrimSpace(statusFilter)))
	if status != "" && !status.Valid() {
		return nil, validationError("unknown member status %q", statusFilter)
	}

	members, err := s.members.List(ctx, status)
	if err != nil {
		return nil, storeError("list members", err)
	}
	return members, nil
}

// Get получает карточку
func (s *MemberService) Get(ctx context.Context, id int64) (*model.Member, error) {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get member", err)
	}
	if member == nil {
		return nil, ErrNotFound
	}
	return member, nil
}

// SetStatus меняет статус карточки
func (s *MemberService) SetStatus(ctx context.Context, id int64, statusName string) (*model.Member, error) {
	status := model.MemberStatus(strings.ToLower(strings.TrimSpace(statusName)))
	if !status.Valid() {
		return nil, validationError("unknown member status %q", statusName)
	}

	ok, err := s.members.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, storeError("update member status", err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	s.logger.Info("Member status changed",
		zap.Int64("member_id", id),
		zap.String("status", string(status)),
	)

	return s.Get(ctx, id)
}
