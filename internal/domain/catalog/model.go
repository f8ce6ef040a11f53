package catalog

import "time"

// Datos de referencia del concierge. Sin workflow: solo alta, edición y
// soft-deactivation vía is_active.

type Destination struct {
	ID      string
	Name    string
	Country string
	Region  string

	IsActive  bool
	SortOrder int

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Provider struct {
	ID   string
	Name string

	// Tipo libre: hotel, operador, restaurante, etc.
	Type   string
	Email  string
	Phone  string
	Rating *float64

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item es una entrada del catálogo de servicios ofrecidos.
type Item struct {
	ID string

	ServiceKind string // lodging, tour, dining, vip
	Name        string
	Description string

	BasePriceUSD *float64

	DestinationID *string
	ProviderID    *string

	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
