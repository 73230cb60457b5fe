package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/events"
	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultNoticePageSize = 20
	maxNoticePageSize     = 100
)

type NoticeOptions struct {
	// Concurrency - сколько вставок рассылки выполняется одновременно
	Concurrency int
	// RetractOnDelete - удалять копии уведомлений вместе с объявлением
	RetractOnDelete bool
}

// FanoutResult - итог рассылки объявления
type FanoutResult struct {
	Recipients int
	Delivered  int64
	Failed     int64
}

type NoticeService struct {
	notices       NoticeStore
	notifications NotificationStore
	profiles      ProfileStore
	events        events.Publisher
	announcer     NoticeAnnouncer
	opts          NoticeOptions
	now           func() time.Time
	logger        *zap.Logger
}

func NewNoticeService(
	notices NoticeStore,
	notifications NotificationStore,
	profiles ProfileStore,
	publisher events.Publisher,
	announcer NoticeAnnouncer,
	opts NoticeOptions,
	logger *zap.Logger,
) *NoticeService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &NoticeService{
		notices:       notices,
		notifications: notifications,
		profiles:      profiles,
		events:        publisher,
		announcer:     announcer,
		opts:          opts,
		now:           time.Now,
		logger:        logger,
	}
}

// Publish сохраняет объявление и рассылает его копии всем профилям.
// Успех операции - сохранённое объявление; сбои рассылки только логируются.
func (s *NoticeService) Publish(ctx context.Context, authorID uuid.UUID, title, content string) (*model.Notice, error) {
	if err := s.requireAdmin(ctx, authorID); err != nil {
		return nil, err
	}

	title, content, err := validateNotice(title, content)
	if err != nil {
		return nil, err
	}

	notice := &model.Notice{
		Title:    title,
		Content:  content,
		AuthorID: authorID,
	}
	if err := s.notices.Create(ctx, notice); err != nil {
		return nil, storeError("create notice", err)
	}

	s.logger.Info("Notice published",
		zap.Int64("notice_id", notice.ID),
		zap.String("author_id", authorID.String()),
	)

	// рассылка не должна обрываться вместе с запросом
	detached := context.WithoutCancel(ctx)
	result := s.fanOut(detached, notice)
	fields := []zap.Field{
		zap.Int64("notice_id", notice.ID),
		zap.Int("recipients", result.Recipients),
		zap.Int64("delivered", result.Delivered),
		zap.Int64("failed", result.Failed),
	}
	if result.Failed > 0 {
		s.logger.Warn("Notice fan-out partially failed", fields...)
	} else {
		s.logger.Info("Notice fan-out finished", fields...)
	}

	s.announce(detached, notice)

	return notice, nil
}

// fanOut создаёт по уведомлению на каждый профиль; копия автора сразу прочитана
func (s *NoticeService) fanOut(ctx context.Context, notice *model.Notice) FanoutResult {
	ids, err := s.profiles.ListIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list recipients for notice",
			zap.Int64("notice_id", notice.ID),
			zap.Error(err),
		)
		return FanoutResult{}
	}

	var delivered, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)

	for _, profileID := range ids {
		profileID := profileID
		g.Go(func() error {
			n := &model.Notification{
				ProfileID: profileID,
				NoticeID:  &notice.ID,
				Title:     notice.Title,
				Message:   notice.Content,
				Type:      model.NotificationTypeNotice,
			}
			if profileID == notice.AuthorID {
				readAt := s.now()
				n.IsRead = true
				n.ReadAt = &readAt
			}

			if err := s.notifications.Create(ctx, n); err != nil {
				failed.Add(1)
				s.logger.Warn("Failed to deliver notice notification",
					zap.Int64("notice_id", notice.ID),
					zap.String("profile_id", profileID.String()),
					zap.Error(err),
				)
				return nil
			}
			delivered.Add(1)

			if !n.IsRead {
				if err := s.events.Publish(ctx, events.New(events.NotificationCreated, profileID, n)); err != nil {
					s.logger.Debug("Failed to publish notification event",
						zap.String("profile_id", profileID.String()),
						zap.Error(err),
					)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return FanoutResult{
		Recipients: len(ids),
		Delivered:  delivered.Load(),
		Failed:     failed.Load(),
	}
}

func (s *NoticeService) announce(ctx context.Context, notice *model.Notice) {
	if s.announcer == nil {
		return
	}
	if err := s.announcer.AnnounceNotice(ctx, notice); err != nil {
		s.logger.Warn("Failed to announce notice",
			zap.Int64("notice_id", notice.ID),
			zap.Error(err),
		)
	}
}

// Delete удаляет объявление. Копии уведомлений остаются, если не включён RetractOnDelete.
func (s *NoticeService) Delete(ctx context.Context, profileID uuid.UUID, noticeID int64) error {
	if err := s.requireAdmin(ctx, profileID); err != nil {
		return err
	}

	deleted, err := s.notices.Delete(ctx, noticeID)
	if err != nil {
		return storeError("delete notice", err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.logger.Info("Notice deleted",
		zap.Int64("notice_id", noticeID),
		zap.String("profile_id", profileID.String()),
	)

	if s.opts.RetractOnDelete {
		retracted, err := s.notifications.DeleteByNotice(ctx, noticeID)
		if err != nil {
			s.logger.Error("Failed to retract notice notifications",
				zap.Int64("notice_id", noticeID),
				zap.Error(err),
			)
			return nil
		}
		s.logger.Info("Notice notifications retracted",
			zap.Int64("notice_id", noticeID),
			zap.Int64("count", retracted),
		)
	}

	return nil
}

// Update меняет заголовок и текст объявления
func (s *NoticeService) Update(ctx context.Context, profileID uuid.UUID, noticeID int64, title, content string) (*model.Notice, error) {
	if err := s.requireAdmin(ctx, profileID); err != nil {
		return nil, err
	}

	title, content, err := validateNotice(title, content)
	if err != nil {
		return nil, err
	}

	notice, err := s.Get(ctx, noticeID)
	if err != nil {
		return nil, err
	}

	notice.Title = title
	notice.Content = content
	if err := s.notices.Update(ctx, notice); err != nil {
		return nil, storeError("update notice", err)
	}

	return notice, nil
}

// Get получает объявление
func (s *NoticeService) Get(ctx context.Context, noticeID int64) (*model.Notice, error) {
	notice, err := s.notices.GetByID(ctx, noticeID)
	if err != nil {
		return nil, storeError("get notice", err)
	}
	if notice == nil {
		return nil, ErrNotFound
	}
	return notice, nil
}

// List получает страницу объявлений
func (s *NoticeService) List(ctx context.Context, limit, offset int) ([]*model.Notice, error) {
	if limit <= 0 {
		limit = defaultNoticePageSize
	}
	if limit > maxNoticePageSize {
		limit = maxNoticePageSize
	}
	if offset < 0 {
		offset = 0
	}

	notices, err := s.notices.List(ctx, limit, offset)
	if err != nil {
		return nil, storeError("list notices", err)
	}
	return notices, nil
}

func (s *NoticeService) requireAdmin(ctx context.Context, profileID uuid.UUID) error {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return storeError("get profile", err)
	}
	if profile == nil || !profile.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func validateNotice(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return "", "", validationError("title is required")
	}
	if content == "" {
		return "", "", validationError("content is required")
	}
	return title, content, nil
}
