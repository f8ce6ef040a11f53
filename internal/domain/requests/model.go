package requests

import "time"

// ServiceKind define las categorías de servicio soportadas.
// @Enum lodging, tour, dining, vip
type ServiceKind string

const (
	KindLodging ServiceKind = "lodging"
	KindTour    ServiceKind = "tour"
	KindDining  ServiceKind = "dining"
	KindVIP     ServiceKind = "vip"
)

// ParseServiceKind valida el valor recibido por wire.
func ParseServiceKind(s string) (ServiceKind, bool) {
	switch ServiceKind(s) {
	case KindLodging, KindTour, KindDining, KindVIP:
		return ServiceKind(s), true
	default:
		return "", false
	}
}

// Request es la solicitud de servicio de un cliente, rastreada por el
// workflow de estados. Los campos descriptivos son editables por el cliente
// dueño mientras la solicitud no esté en estado terminal; el estado solo
// cambia vía Transition.
type Request struct {
	ID       string
	ClientID string

	ServiceKind   ServiceKind
	DestinationID *string
	CatalogID     *string

	StartDate *time.Time
	EndDate   *time.Time

	Guests       *int
	BudgetUSD    *float64
	DietaryNotes string
	Interests    []string
	Notes        string

	CurrentStatus Status

	// Se fija una sola vez: el primer admin que saca la solicitud de "new".
	// Nunca se reasigna.
	AssignedAdminID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StatusHistoryEntry es el registro inmutable de una transición.
// Seq es un número de secuencia monótono por solicitud, asignado por el
// repositorio: el orden del historial es por inserción, no por reloj.
type StatusHistoryEntry struct {
	ID        string
	RequestID string
	Seq       int64

	// Nil solo si el registro no proviene de una transición (no ocurre en
	// los flujos actuales; la creación de la solicitud no escribe historial).
	FromStatus *Status
	ToStatus   Status

	ChangedBy string
	Note      string
	CreatedAt time.Time
}
