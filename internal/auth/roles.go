package auth

import "strings"

// Role represents a portal user role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// NormalizeRole validates and normalizes a role string. The backend's
// Spanish role names are accepted too.
func NormalizeRole(value string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "user", "usuario", "cliente":
		return RoleUser, true
	case "admin", "administrador", "administrator":
		return RoleAdmin, true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	default:
		return 0
	}
}
