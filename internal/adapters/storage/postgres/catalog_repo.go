package postgres

import (
	"context"
	"database/sql"

	"concierium/internal/domain/catalog"
)

type CatalogRepo struct {
	db *sql.DB
}

func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// Save* son upserts por id: el servicio genera el id en el alta y lo
// reusa en la edición, así que INSERT ... ON CONFLICT cubre ambos casos.

func (r *CatalogRepo) SaveDestination(ctx context.Context, d catalog.Destination) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO destinations (
			id, name, country, region, is_active, sort_order, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			country = EXCLUDED.country,
			region = EXCLUDED.region,
			is_active = EXCLUDED.is_active,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at
	`,
		d.ID, d.Name, d.Country, d.Region, d.IsActive, d.SortOrder, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (r *CatalogRepo) GetDestination(ctx context.Context, id string) (catalog.Destination, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, country, region, is_active, sort_order, created_at, updated_at
		FROM destinations
		WHERE id = $1
	`, id)

	var d catalog.Destination
	if err := row.Scan(&d.ID, &d.Name, &d.Country, &d.Region, &d.IsActive, &d.SortOrder, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Destination{}, catalog.ErrNotFound
		}
		return catalog.Destination{}, err
	}
	return d, nil
}

func (r *CatalogRepo) ListDestinations(ctx context.Context, onlyActive bool) ([]catalog.Destination, error) {
	query := `
		SELECT id, name, country, region, is_active, sort_order, created_at, updated_at
		FROM destinations
	`
	if onlyActive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalog.Destination, 0)
	for rows.Next() {
		var d catalog.Destination
		if err := rows.Scan(&d.ID, &d.Name, &d.Country, &d.Region, &d.IsActive, &d.SortOrder, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) SaveProvider(ctx context.Context, p catalog.Provider) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO providers (
			id, name, type, email, phone, rating, is_active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			rating = EXCLUDED.rating,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`,
		p.ID, p.Name, p.Type, p.Email, p.Phone, toNullFloat(p.Rating), p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *CatalogRepo) GetProvider(ctx context.Context, id string) (catalog.Provider, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, email, phone, rating, is_active, created_at, updated_at
		FROM providers
		WHERE id = $1
	`, id)

	p, err := scanProvider(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return catalog.Provider{}, catalog.ErrNotFound
		}
		return catalog.Provider{}, err
	}
	return p, nil
}

func (r *CatalogRepo) ListProviders(ctx context.Context, onlyActive bool) ([]catalog.Provider, error) {
	query := `
		SELECT id, name, type, email, phone, rating, is_active, created_at, updated_at
		FROM providers
	`
	if onlyActive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY is_active DESC, name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalog.Provider, 0)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) SaveItem(ctx context.Context, it catalog.Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog_items (
			id, service_kind, name, description, base_price_usd,
			destination_id, provider_id, is_active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			service_kind = EXCLUDED.service_kind,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			base_price_usd = EXCLUDED.base_price_usd,
			destination_id = EXCLUDED.destination_id,
			provider_id = EXCLUDED.provider_id,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`,
		it.ID,
		it.ServiceKind,
		it.Name,
		it.Description,
		toNullFloat(it.BasePriceUSD),
		toNullString(it.DestinationID),
		toNullString(it.ProviderID),
		it.IsActive,
		it.CreatedAt,
		it.UpdatedAt,
	)
	return err
}

func (r *CatalogRepo) GetItem(ctx context.Context, id string) (catalog.Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, service_kind, name, description, base_price_usd,
		       destination_id, provider_id, is_active, created_at, updated_at
		FROM catalog_items
		WHERE id = $1
	`, id)

	it, err := scanItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return catalog.Item{}, catalog.ErrNotFound
		}
		return catalog.Item{}, err
	}
	return it, nil
}

func (r *CatalogRepo) ListItems(ctx context.Context, onlyActive bool) ([]catalog.Item, error) {
	query := `
		SELECT id, service_kind, name, description, base_price_usd,
		       destination_id, provider_id, is_active, created_at, updated_at
		FROM catalog_items
	`
	if onlyActive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY service_kind ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]catalog.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanProvider(row rowScanner) (catalog.Provider, error) {
	var (
		p      catalog.Provider
		rating sql.NullFloat64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Email, &p.Phone, &rating, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return catalog.Provider{}, err
	}
	if rating.Valid {
		v := rating.Float64
		p.Rating = &v
	}
	return p, nil
}

func scanItem(row rowScanner) (catalog.Item, error) {
	var (
		it    catalog.Item
		price sql.NullFloat64
		dest  sql.NullString
		prov  sql.NullString
	)
	if err := row.Scan(
		&it.ID,
		&it.ServiceKind,
		&it.Name,
		&it.Description,
		&price,
		&dest,
		&prov,
		&it.IsActive,
		&it.CreatedAt,
		&it.UpdatedAt,
	); err != nil {
		return catalog.Item{}, err
	}
	if price.Valid {
		v := price.Float64
		it.BasePriceUSD = &v
	}
	it.DestinationID = fromNullString(dest)
	it.ProviderID = fromNullString(prov)
	return it, nil
}
