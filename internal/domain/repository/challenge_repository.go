package repository

import (
	"context"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
)

// ChallengeRepository persists yearly reading challenges, unique on (user, year).
type ChallengeRepository interface {
	GetByUserAndYear(ctx context.Context, userID string, year int) (*entity.ReadingChallenge, error)
	Create(ctx context.Context, ch *entity.ReadingChallenge) error
	Update(ctx context.Context, ch *entity.ReadingChallenge) error
}
