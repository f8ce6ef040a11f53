package notify

import "context"

// Notifier envía una notificación por correo. Best-effort: el caller decide
// qué hacer con el error (normalmente loguear, nunca propagar al cliente).
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
