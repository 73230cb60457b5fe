package model

import (
	"time"

	"github.com/google/uuid"
)

type MemberType string

const (
	MemberTypeMember MemberType = "member"
	MemberTypeGuest  MemberType = "guest"
)

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

// Valid проверяет статус
func (s MemberStatus) Valid() bool {
	return s == MemberStatusActive || s == MemberStatusInactive
}

// Member - карточка члена студии, одна на телефон
type Member struct {
	ID        int64        `json:"id"`
	ProfileID *uuid.UUID   `json:"profile_id,omitempty"`
	Phone     string       `json:"phone"`
	Name      string       `json:"name"`
	Type      MemberType   `json:"type"`
	Status    MemberStatus `json:"status"`
	JoinDate  time.Time    `json:"join_date"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
