package domain

import "fmt"

// Role is the closed set of staff roles.
type Role string

const (
	// RoleAdmin manages staff accounts.
	RoleAdmin Role = "admin"
	// RoleAnalyst reads the reports.
	RoleAnalyst Role = "analyst"
	// RoleManager handles clients and appointments.
	RoleManager Role = "manager"
	// RoleMaster is a workshop mechanic.
	RoleMaster Role = "master"
)

// Roles lists every role in the order the selector shows them.
var Roles = []Role{RoleAdmin, RoleAnalyst, RoleManager, RoleMaster}

// ParseRole converts a button identifier into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleAnalyst, RoleManager, RoleMaster:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Title returns the human-readable label of the role.
func (r Role) Title() string {
	switch r {
	case RoleAdmin:
		return "Админ"
	case RoleAnalyst:
		return "Аналитик"
	case RoleManager:
		return "Менеджер"
	case RoleMaster:
		return "Мастер"
	}
	return string(r)
}

// Icon returns the emoji prefix used on the role button.
func (r Role) Icon() string {
	switch r {
	case RoleAdmin:
		return "🔓"
	case RoleAnalyst:
		return "📊"
	case RoleManager:
		return "📩"
	case RoleMaster:
		return "🔨"
	}
	return ""
}
