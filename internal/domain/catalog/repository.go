package catalog

import "context"

// Repository persiste las tres colecciones de referencia. Save hace
// insert-o-update por ID (el servicio decide el ID antes de llamar).
type Repository interface {
	SaveDestination(ctx context.Context, d Destination) error
	GetDestination(ctx context.Context, id string) (Destination, error)
	// onlyActive filtra is_active; orden: sort_order asc, name asc.
	ListDestinations(ctx context.Context, onlyActive bool) ([]Destination, error)

	SaveProvider(ctx context.Context, p Provider) error
	GetProvider(ctx context.Context, id string) (Provider, error)
	// Orden: is_active desc, name asc.
	ListProviders(ctx context.Context, onlyActive bool) ([]Provider, error)

	SaveItem(ctx context.Context, it Item) error
	GetItem(ctx context.Context, id string) (Item, error)
	// Orden: service_kind asc, name asc.
	ListItems(ctx context.Context, onlyActive bool) ([]Item, error)
}
