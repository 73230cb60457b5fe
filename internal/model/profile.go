package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile - внутренняя учётная запись, отдельная от субъекта провайдера авторизации
type Profile struct {
	ID          uuid.UUID `json:"id"`
	SubjectID   *string   `json:"subject_id,omitempty"` // nil до первого входа
	Phone       *string   `json:"phone,omitempty"`
	DisplayName string    `json:"display_name"`
	Role        *Role     `json:"role"` // nil - роль не назначена
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasRole проверяет назначенную роль
func (p *Profile) HasRole(role Role) bool {
	return p != nil && p.Role != nil && *p.Role == role
}

// IsAdmin сокращение для HasRole(RoleAdmin)
func (p *Profile) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}
