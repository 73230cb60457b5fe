package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeLesson     NotificationType = "lesson"
	NotificationTypeAttendance NotificationType = "attendance"
	NotificationTypeNotice     NotificationType = "notice"
	NotificationTypeCustom     NotificationType = "custom"
)

// Valid проверяет тип уведомления
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeLesson, NotificationTypeAttendance, NotificationTypeNotice, NotificationTypeCustom:
		return true
	}
	return false
}

// Notification - уведомление конкретного профиля
type Notification struct {
	ID        int64            `json:"id"`
	ProfileID uuid.UUID        `json:"profile_id"`
	NoticeID  *int64           `json:"notice_id,omitempty"` // заполнено для копий объявления
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
