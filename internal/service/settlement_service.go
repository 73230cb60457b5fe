package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/settlement"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SettlementService struct {
	lessons LessonStore
	loc     *time.Location
	logger  *zap.Logger
}

func NewSettlementService(lessons LessonStore, loc *time.Location, logger *zap.Logger) *SettlementService {
	if loc == nil {
		loc = time.Local
	}
	return &SettlementService{
		lessons: lessons,
		loc:     loc,
		logger:  logger,
	}
}

// Aggregate считает отчёт инструктора за месяц.
// Отсутствие занятий - пустой отчёт, а не ошибка.
func (s *SettlementService) Aggregate(ctx context.Context, instructorID uuid.UUID, year, month int) (*settlement.Report, error) {
	if year < 1000 || year > 9999 {
		return nil, validationError("year must be a 4-digit year, got %d", year)
	}
	if month < 1 || month > 12 {
		return nil, validationError("month must be between 1 and 12, got %d", month)
	}

	window := settlement.NewWindow(instructorID, year, time.Month(month), s.loc)

	lessons, err := s.lessons.ListCompletedByInstructor(ctx, instructorID, window.First, window.Last)
	if err != nil {
		s.logger.Error("Failed to load lessons for settlement",
			zap.String("instructor_id", instructorID.String()),
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Error(err),
		)
		return nil, &AggregationError{InstructorID: instructorID, Year: year, Month: month, Err: err}
	}

	report := settlement.Aggregate(window, lessons)

	s.logger.Debug("Settlement aggregated",
		zap.String("instructor_id", instructorID.String()),
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("lessons", len(lessons)),
		zap.Int("total", report.TotalCount),
	)

	return &report, nil
}
