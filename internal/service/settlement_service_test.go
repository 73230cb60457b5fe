package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSettlementAggregateValidation(t *testing.T) {
	svc := NewSettlementService(&fakeLessons{}, time.UTC, zap.NewNop())
	id := uuid.New()

	for _, tc := range []struct{ year, month int }{
		{2025, 0},
		{2025, 13},
		{999, 5},
		{10000, 5},
	} {
		_, err := svc.Aggregate(context.Background(), id, tc.year, tc.month)
		assert.ErrorIs(t, err, ErrValidation, "%d-%d", tc.year, tc.month)
	}
}

func TestSettlementAggregateStoreFailure(t *testing.T) {
	svc := NewSettlementService(&fakeLessons{err: errDBDown}, time.UTC, zap.NewNop())
	id := uuid.New()

	_, err := svc.Aggregate(context.Background(), id, 2025, 3)
	require.Error(t, err)

	var aggErr *AggregationError
	require.True(t, errors.As(err, &aggErr))
	assert.Equal(t, id, aggErr.InstructorID)
	assert.Equal(t, 3, aggErr.Month)
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, errDBDown)
}

func TestSettlementAggregateWindow(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	id := uuid.New()
	kim := model.LessonMember{ID: 1, Name: "Kim"}
	lessons := &fakeLessons{lessons: []*model.LessonRecord{
		{Date: time.Date(2025, time.March, 31, 0, 0, 0, 0, seoul), InstructorID: id, Members: []model.LessonMember{kim}, LessonType: "personal", PaymentType: "regular", Status: model.LessonStatusCompleted},
		{Date: time.Date(2025, time.March, 2, 0, 0, 0, 0, seoul), InstructorID: id, Members: []model.LessonMember{kim}, LessonType: "group", PaymentType: "coupon", Status: model.LessonStatusCompleted},
		{Date: time.Date(2025, time.March, 3, 0, 0, 0, 0, seoul), InstructorID: uuid.New(), Members: []model.LessonMember{kim}, LessonType: "group", PaymentType: "coupon", Status: model.LessonStatusCompleted},
	}}
	svc := NewSettlementService(lessons, seoul, zap.NewNop())

	report, err := svc.Aggregate(context.Background(), id, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalCount)
	require.Len(t, report.PerMember, 1)
	assert.Equal(t, 2, report.PerMember[0].TotalCount)

	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, seoul), lessons.from)
	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, seoul), lessons.to)
}

func TestSettlementAggregateEmpty(t *testing.T) {
	svc := NewSettlementService(&fakeLessons{}, nil, zap.NewNop())

	report, err := svc.Aggregate(context.Background(), uuid.New(), 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalCount)
	assert.Empty(t, report.PerMember)
}
