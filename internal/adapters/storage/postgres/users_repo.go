package postgres

import (
	"context"
	"database/sql"

	"concierium/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `
	id, full_name, email, phone, preferred_lang,
	role, is_active, password_hash,
	created_at, updated_at
`

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, full_name, email, phone, preferred_lang,
			role, is_active, password_hash,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		u.ID,
		u.FullName,
		u.Email,
		u.Phone,
		u.PreferredLang,
		u.Role,
		u.IsActive,
		u.PasswordHash,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			full_name = $2,
			email = $3,
			phone = $4,
			preferred_lang = $5,
			role = $6,
			is_active = $7,
			password_hash = $8,
			updated_at = $9
		WHERE id = $1
	`,
		u.ID,
		u.FullName,
		u.Email,
		u.Phone,
		u.PreferredLang,
		u.Role,
		u.IsActive,
		u.PasswordHash,
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (users.User, error) {
	var u users.User
	if err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.Phone,
		&u.PreferredLang,
		&u.Role,
		&u.IsActive,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}
	return u, nil
}
