package repository

import (
	"context"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
)

// BookRepository persists books keyed by owner. Each call is atomic for one record.
type BookRepository interface {
	ListByUser(ctx context.Context, userID string) ([]entity.Book, error)
	GetByID(ctx context.Context, id string) (*entity.Book, error)
	Create(ctx context.Context, b *entity.Book) error
	Update(ctx context.Context, b *entity.Book) error
	Delete(ctx context.Context, id string) error
}
