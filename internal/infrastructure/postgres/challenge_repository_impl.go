package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/repository"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
)

type ChallengeRepository struct {
	pool *pgxpool.Pool
}

func NewChallengeRepository(pool *pgxpool.Pool) *ChallengeRepository {
	return &ChallengeRepository{pool: pool}
}

func (r *ChallengeRepository) GetByUserAndYear(ctx context.Context, userID string, year int) (*entity.ReadingChallenge, error) {
	ch := &entity.ReadingChallenge{}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, user_id, year, goal, completed, created_at
		FROM reading_challenges
		WHERE user_id = $1 AND year = $2
	`, userID, year)
	if err := row.Scan(&ch.ID, &ch.UserID, &ch.Year, &ch.Goal, &ch.Completed, &ch.CreatedAt); err != nil {
		return nil, mapErr(err, "reading challenge")
	}
	return ch, nil
}

// Create fails with a Conflict when the user already has a challenge for the year.
func (r *ChallengeRepository) Create(ctx context.Context, ch *entity.ReadingChallenge) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reading_challenges (user_id, year, goal, completed)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at
	`, ch.UserID, ch.Year, ch.Goal, ch.Completed)
	return mapErr(row.Scan(&ch.ID, &ch.CreatedAt), "reading challenge")
}

func (r *ChallengeRepository) Update(ctx context.Context, ch *entity.ReadingChallenge) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE reading_challenges SET goal = $1, completed = $2
		WHERE user_id = $3 AND year = $4
	`, ch.Goal, ch.Completed, ch.UserID, ch.Year)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperror.NotFound("reading challenge not found")
	}
	return nil
}

var _ repository.ChallengeRepository = (*ChallengeRepository)(nil)
