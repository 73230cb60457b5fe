package model

import (
	"errors"
	"strings"
)

// ErrInvalidRole возвращается при разборе неизвестной роли
var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleGuest      Role = "guest"
	RoleMember     Role = "member"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// ParseRole разбирает строку роли (регистр и пробелы игнорируются)
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleGuest, RoleMember, RoleInstructor, RoleAdmin:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

// IsStaff - инструктор или администратор
func (r Role) IsStaff() bool {
	return r == RoleInstructor || r == RoleAdmin
}

// MemberType возвращает тип записи Member для роли, если он есть
func (r Role) MemberType() (MemberType, bool) {
	switch r {
	case RoleMember:
		return MemberTypeMember, true
	case RoleGuest:
		return MemberTypeGuest, true
	default:
		return "", false
	}
}
