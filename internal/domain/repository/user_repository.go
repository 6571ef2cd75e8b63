package repository

import (
	"context"

	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	// Create devuelve domain.ErrEmailAlreadyExists si el email ya está registrado.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail devuelve domain.ErrUserNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, page Page) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}
