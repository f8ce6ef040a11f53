package requests

import (
	"context"
	"time"
)

// StatusWrite describe el cambio de estado condicional. El repositorio debe
// aplicar update + historial de forma atómica, y solo si el estado actual
// coincide con ExpectedStatus (compare-and-swap).
type StatusWrite struct {
	RequestID      string
	ExpectedStatus Status
	NewStatus      Status

	// Vacío = no tocar. Si viene, se aplica solo cuando assigned_admin_id
	// aún es null (asignación first-touch, nunca se sobreescribe).
	AssignAdminID string

	// UpdatedAt de la solicitud y CreatedAt del historial.
	Now time.Time

	Entry StatusHistoryEntry
}

type Repository interface {
	Create(ctx context.Context, r Request) error
	Update(ctx context.Context, r Request) error
	GetByID(ctx context.Context, id string) (Request, error)

	// status vacío = sin filtro. limit <= 0 = sin límite.
	ListByClient(ctx context.Context, clientID string, status Status) ([]Request, error)
	List(ctx context.Context, status Status, limit int) ([]Request, error)

	// UpdateStatus devuelve false (sin error) si ExpectedStatus no coincide
	// con el estado persistido: el caller lo mapea a conflicto. En éxito
	// escribe exactamente un StatusHistoryEntry con su Seq asignado.
	UpdateStatus(ctx context.Context, w StatusWrite) (bool, error)

	// ListHistory devuelve el historial ordenado por Seq ascendente.
	ListHistory(ctx context.Context, requestID string) ([]StatusHistoryEntry, error)
}
