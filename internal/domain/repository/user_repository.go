package repository

import (
	"context"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Lookups that find nothing return an apperror NotFound.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
