package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// NotificationPurger удаляет прочитанные уведомления старше порога
type NotificationPurger interface {
	PurgeRead(ctx context.Context, olderThan time.Time) (int64, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	purger    NotificationPurger
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	logger    *zap.Logger
	stopChan  chan struct{}
	done      chan struct{}
}

// NewScheduler создаёт планировщик очистки уведомлений.
// retentionDays == 0 отключает очистку.
func NewScheduler(purger NotificationPurger, retentionDays int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  24 * time.Hour,
		now:       time.Now,
		logger:    logger,
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	if s.retention <= 0 {
		s.logger.Info("Notification retention disabled")
		close(s.done)
		return
	}

	s.logger.Info("Starting background scheduler", zap.Duration("retention", s.retention))
	go s.runPurgeTask(ctx)
}

// Stop останавливает фоновые задачи и дожидается их завершения
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	<-s.done
}

func (s *Scheduler) runPurgeTask(ctx context.Context) {
	defer close(s.done)

	// Первый запуск сразу при старте
	s.purge(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.purge(ctx)
		case <-s.stopChan:
			s.logger.Info("Notification purge task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Notification purge task cancelled")
			return
		}
	}
}

func (s *Scheduler) purge(ctx context.Context) {
	cutoff := s.now().Add(-s.retention)

	deleted, err := s.purger.PurgeRead(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to purge read notifications", zap.Error(err))
		return
	}

	s.logger.Info("Read notifications purged",
		zap.Int64("deleted", deleted),
		zap.Time("cutoff", cutoff),
	)
}
