package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LessonRepository читает занятия; записью занимается модуль расписания
type LessonRepository struct {
	pool *pgxpool.Pool
}

func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{pool: pool}
}

// ListCompletedByInstructor получает завершённые занятия инструктора с from по to включительно.
// from и to - календарные даты.
func (r *LessonRepository) ListCompletedByInstructor(ctx context.Context, instructorID uuid.UUID, from, to time.Time) ([]*model.LessonRecord, error) {
	query := `
		SELECT l.id, l.lesson_date, l.lesson_time, l.instructor_id, l.lesson_type, l.payment_type, l.status,
		       m.id, m.name
		FROM lessons l
		JOIN lesson_members lm ON lm.lesson_id = l.id
		JOIN members m ON m.id = lm.member_id
		WHERE l.instructor_id = $1
		  AND l.status = $2
		  AND l.lesson_date BETWEEN $3 AND $4
		ORDER BY l.lesson_date, l.lesson_time, l.id, m.id
	`

	rows, err := r.pool.Query(ctx, query,
		instructorID,
		string(model.LessonStatusCompleted),
		civilDate(from),
		civilDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list completed lessons: %w", err)
	}
	defer rows.Close()

	var scanned []lessonRow
	for rows.Next() {
		var row lessonRow
		err := rows.Scan(
			&row.lesson.ID,
			&row.lesson.Date,
			&row.lesson.Time,
			&row.lesson.InstructorID,
			&row.lesson.LessonType,
			&row.lesson.PaymentType,
			&row.status,
			&row.member.ID,
			&row.member.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		scanned = append(scanned, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	return foldLessonRows(scanned), nil
}

// lessonRow - одна строка выборки: занятие плюс один его участник
type lessonRow struct {
	lesson model.LessonRecord
	status string
	member model.LessonMember
}

// foldLessonRows собирает строки по участникам обратно в занятия.
// Строки одного занятия должны идти подряд.
func foldLessonRows(rows []lessonRow) []*model.LessonRecord {
	var lessons []*model.LessonRecord
	var current *model.LessonRecord
	for _, row := range rows {
		if current == nil || current.ID != row.lesson.ID {
			lesson := row.lesson
			lesson.Status = model.LessonStatus(row.status)
			lesson.Members = nil
			current = &lesson
			lessons = append(lessons, current)
		}
		current.Members = append(current.Members, row.member)
	}
	return lessons
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
