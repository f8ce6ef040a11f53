package users

import "context"

type Repository interface {
	// Create falla si el email ya existe (el upsert de signup lo resuelve
	// el servicio leyendo primero por email).
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}
