package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/repository"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, display_name, photo_url, yearly_goal, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, display_name, photo_url, yearly_goal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.DisplayName, u.PhotoURL, u.YearlyGoal)

	return mapErr(row.Scan(&u.CreatedAt, &u.UpdatedAt), "user")
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.YearlyGoal,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapErr(err, "user")
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, display_name = $2, photo_url = $3, yearly_goal = $4, updated_at = $5
		WHERE id = $6
	`, u.Email, u.DisplayName, u.PhotoURL, u.YearlyGoal, u.UpdatedAt, u.ID)
	if err != nil {
		return mapErr(err, "user")
	}

	if res.RowsAffected() == 0 {
		return apperror.NotFound("user not found")
	}

	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
