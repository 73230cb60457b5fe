package model

import (
	"time"

	"github.com/google/uuid"
)

type LessonStatus string

const (
	LessonStatusScheduled LessonStatus = "scheduled"
	LessonStatusCompleted LessonStatus = "completed"
	LessonStatusCanceled  LessonStatus = "canceled"
)

// LessonMember - участник занятия
type LessonMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LessonRecord - проведённое или запланированное занятие.
// Date - календарная дата в часовом поясе студии (время суток не учитывается).
type LessonRecord struct {
	ID           int64          `json:"id"`
	Date         time.Time      `json:"date"`
	Time         string         `json:"time"` // HH:MM
	InstructorID uuid.UUID      `json:"instructor_id"`
	Members      []LessonMember `json:"members"`
	LessonType   string         `json:"lesson_type"`  // personal, duet, group...
	PaymentType  string         `json:"payment_type"` // regular, coupon, trial...
	Status       LessonStatus   `json:"status"`
}

// IsCompleted проверяет статус занятия
func (l *LessonRecord) IsCompleted() bool {
	return l.Status == LessonStatusCompleted
}
