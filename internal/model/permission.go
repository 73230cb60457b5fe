package model

import (
	"time"

	"github.com/google/uuid"
)

// MenuKey - раздел меню, доступ к которому выдаётся отдельно
type MenuKey string

const (
	MenuDashboard   MenuKey = "dashboard"
	MenuAttendance  MenuKey = "attendance"
	MenuMembers     MenuKey = "members"
	MenuClasses     MenuKey = "classes"
	MenuSettlements MenuKey = "settlements"
	MenuSettings    MenuKey = "settings"
)

// AllMenuKeys - полный фиксированный набор ключей в порядке меню
var AllMenuKeys = []MenuKey{
	MenuDashboard,
	MenuAttendance,
	MenuMembers,
	MenuClasses,
	MenuSettlements,
	MenuSettings,
}

// Valid проверяет что ключ входит в фиксированный набор
func (k MenuKey) Valid() bool {
	for _, key := range AllMenuKeys {
		if key == k {
			return true
		}
	}
	return false
}

// MenuPermission - сохранённое значение доступа для профиля
type MenuPermission struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Key       MenuKey   `json:"key"`
	Granted   bool      `json:"granted"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PermissionSet - итоговый набор доступов профиля
type PermissionSet map[MenuKey]bool

// Allows возвращает true если доступ выдан
func (s PermissionSet) Allows(key MenuKey) bool {
	return s[key]
}

// Clone возвращает независимую копию
func (s PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

var (
	staffDefaults = PermissionSet{
		MenuDashboard:   true,
		MenuAttendance:  true,
		MenuMembers:     true,
		MenuClasses:     true,
		MenuSettlements: true,
		MenuSettings:    true,
	}
	memberDefaults = PermissionSet{
		MenuDashboard:   true,
		MenuAttendance:  true,
		MenuMembers:     false,
		MenuClasses:     false,
		MenuSettlements: false,
		MenuSettings:    true,
	}
	defaultPermissions = map[Role]PermissionSet{
		RoleAdmin:      staffDefaults,
		RoleInstructor: staffDefaults,
		RoleMember:     memberDefaults,
		RoleGuest:      memberDefaults,
	}
)

// DefaultPermissions возвращает таблицу доступов по умолчанию для роли.
// Для неназначенной роли (nil) все доступы закрыты.
func DefaultPermissions(role *Role) PermissionSet {
	if role != nil {
		if set, ok := defaultPermissions[*role]; ok {
			return set.Clone()
		}
	}
	out := make(PermissionSet, len(AllMenuKeys))
	for _, key := range AllMenuKeys {
		out[key] = false
	}
	return out
}
