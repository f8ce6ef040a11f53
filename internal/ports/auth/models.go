package auth

import "strings"

// Roles reconocidos por la plataforma.
const (
	RoleClient     = "client"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// IsAdmin indica si el rol tiene privilegios de administración.
func IsAdmin(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdmin, RoleSuperadmin:
		return true
	default:
		return false
	}
}
