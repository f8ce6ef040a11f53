package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"concierium/internal/domain/requests"
)

type RequestsRepo struct {
	db *sql.DB
}

func NewRequestsRepo(db *sql.DB) *RequestsRepo {
	return &RequestsRepo{db: db}
}

const requestColumns = `
	id, client_id, service_kind, destination_id, catalog_id,
	start_date, end_date, guests, budget_usd,
	dietary_notes, interests, notes,
	current_status, assigned_admin_id,
	created_at, updated_at
`

func (r *RequestsRepo) Create(ctx context.Context, req requests.Request) error {
	interests, err := marshalInterests(req.Interests)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO requests (
			id, client_id, service_kind, destination_id, catalog_id,
			start_date, end_date, guests, budget_usd,
			dietary_notes, interests, notes,
			current_status, assigned_admin_id,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		req.ID,
		req.ClientID,
		string(req.ServiceKind),
		toNullString(req.DestinationID),
		toNullString(req.CatalogID),
		toNullDate(req.StartDate),
		toNullDate(req.EndDate),
		toNullInt(req.Guests),
		toNullFloat(req.BudgetUSD),
		req.DietaryNotes,
		interests,
		req.Notes,
		string(req.CurrentStatus),
		toNullString(req.AssignedAdminID),
		req.CreatedAt,
		req.UpdatedAt,
	)
	return err
}

// Update solo toca el payload descriptivo. El estado y la asignación de
// admin cambian únicamente por UpdateStatus.
func (r *RequestsRepo) Update(ctx context.Context, req requests.Request) error {
	interests, err := marshalInterests(req.Interests)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE requests
		SET
			service_kind = $2,
			destination_id = $3,
			catalog_id = $4,
			start_date = $5,
			end_date = $6,
			guests = $7,
			budget_usd = $8,
			dietary_notes = $9,
			interests = $10,
			notes = $11,
			updated_at = $12
		WHERE id = $1
	`,
		req.ID,
		string(req.ServiceKind),
		toNullString(req.DestinationID),
		toNullString(req.CatalogID),
		toNullDate(req.StartDate),
		toNullDate(req.EndDate),
		toNullInt(req.Guests),
		toNullFloat(req.BudgetUSD),
		req.DietaryNotes,
		interests,
		req.Notes,
		req.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return requests.ErrNotFound
	}
	return nil
}

func (r *RequestsRepo) GetByID(ctx context.Context, id string) (requests.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return requests.Request{}, requests.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+`
		FROM requests
		WHERE id = $1
	`, id)

	req, err := scanRequest(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return requests.Request{}, requests.ErrNotFound
		}
		return requests.Request{}, err
	}
	return req, nil
}

func (r *RequestsRepo) ListByClient(ctx context.Context, clientID string, status requests.Status) ([]requests.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE client_id = $1
	`
	args := []any{clientID}
	if status != "" {
		query += ` AND current_status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	return r.queryRequests(ctx, query, args...)
}

func (r *RequestsRepo) List(ctx context.Context, status requests.Status, limit int) ([]requests.Request, error) {
	// limit <= 0 = sin LIMIT (el dashboard pide todo para contar por estado).
	if status != "" && limit > 0 {
		return r.queryRequests(ctx, `
			SELECT `+requestColumns+`
			FROM requests
			WHERE current_status = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, string(status), limit)
	}
	if status != "" {
		return r.queryRequests(ctx, `
			SELECT `+requestColumns+`
			FROM requests
			WHERE current_status = $1
			ORDER BY created_at DESC
		`, string(status))
	}
	if limit > 0 {
		return r.queryRequests(ctx, `
			SELECT `+requestColumns+`
			FROM requests
			ORDER BY created_at DESC
			LIMIT $1
		`, limit)
	}
	return r.queryRequests(ctx, `
		SELECT `+requestColumns+`
		FROM requests
		ORDER BY created_at DESC
	`)
}

// UpdateStatus: update condicional + historial en una transacción. El WHERE
// sobre current_status es el compare-and-swap; si no matchea filas, otro
// actor ganó la carrera (o el id no existe) y devolvemos false sin escribir
// historial.
func (r *RequestsRepo) UpdateStatus(ctx context.Context, w requests.StatusWrite) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE requests
		SET current_status = $1,
		    updated_at = $2,
		    assigned_admin_id = COALESCE(assigned_admin_id, NULLIF($3, ''))
		WHERE id = $4 AND current_status = $5
	`,
		string(w.NewStatus),
		w.Now,
		w.AssignAdminID,
		w.RequestID,
		string(w.ExpectedStatus),
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}

	var from sql.NullString
	if w.Entry.FromStatus != nil {
		from = sql.NullString{String: string(*w.Entry.FromStatus), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO status_history (
			id, request_id, seq, from_status, to_status, changed_by, note, created_at
		)
		SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3, $4, $5, $6, $7
		FROM status_history
		WHERE request_id = $2
	`,
		w.Entry.ID,
		w.RequestID,
		from,
		string(w.Entry.ToStatus),
		w.Entry.ChangedBy,
		w.Entry.Note,
		w.Entry.CreatedAt,
	)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RequestsRepo) ListHistory(ctx context.Context, requestID string) ([]requests.StatusHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, request_id, seq, from_status, to_status, changed_by, note, created_at
		FROM status_history
		WHERE request_id = $1
		ORDER BY seq ASC
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]requests.StatusHistoryEntry, 0)
	for rows.Next() {
		var e requests.StatusHistoryEntry
		var from sql.NullString
		if err := rows.Scan(
			&e.ID,
			&e.RequestID,
			&e.Seq,
			&from,
			&e.ToStatus,
			&e.ChangedBy,
			&e.Note,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if from.Valid {
			s := requests.Status(from.String)
			e.FromStatus = &s
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *RequestsRepo) queryRequests(ctx context.Context, query string, args ...any) ([]requests.Request, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]requests.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (requests.Request, error) {
	var (
		req       requests.Request
		kind      string
		status    string
		dest      sql.NullString
		catalogID sql.NullString
		start     sql.NullTime
		end       sql.NullTime
		guests    sql.NullInt64
		budget    sql.NullFloat64
		admin     sql.NullString
		interests []byte
	)

	if err := row.Scan(
		&req.ID,
		&req.ClientID,
		&kind,
		&dest,
		&catalogID,
		&start,
		&end,
		&guests,
		&budget,
		&req.DietaryNotes,
		&interests,
		&req.Notes,
		&status,
		&admin,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return requests.Request{}, err
	}

	req.ServiceKind = requests.ServiceKind(kind)
	req.CurrentStatus = requests.Status(status)
	req.DestinationID = fromNullString(dest)
	req.CatalogID = fromNullString(catalogID)
	req.StartDate = fromNullTime(start)
	req.EndDate = fromNullTime(end)
	req.AssignedAdminID = fromNullString(admin)

	if guests.Valid {
		g := int(guests.Int64)
		req.Guests = &g
	}
	if budget.Valid {
		b := budget.Float64
		req.BudgetUSD = &b
	}
	if len(interests) > 0 {
		if err := json.Unmarshal(interests, &req.Interests); err != nil {
			return requests.Request{}, err
		}
	}

	return req, nil
}

// interests se persiste como jsonb.
func marshalInterests(in []string) ([]byte, error) {
	if in == nil {
		in = []string{}
	}
	return json.Marshal(in)
}

func toNullString(s *string) sql.NullString {
	if s == nil || strings.TrimSpace(*s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func toNullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
