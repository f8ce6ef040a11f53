package users

import "time"

// User es una cuenta de la plataforma. El rol viene de ports/auth
// (client, admin, superadmin); las cuentas creadas por signup son siempre
// client, los admins se dan de alta por fuera.
type User struct {
	ID       string
	FullName string
	Email    string
	Phone    string

	PreferredLang string // "es" default
	Role          string
	IsActive      bool

	PasswordHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}
