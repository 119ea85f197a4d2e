package postgres

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/repository"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
)

type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

const bookColumns = `id::text, user_id, title, author, genre, pages, status, current_page, rating,
	date_started, date_finished, created_at, updated_at`

// ListByUser returns every book the user owns, newest first.
func (r *BookRepository) ListByUser(ctx context.Context, userID string) ([]entity.Book, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := make([]entity.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound("book not found")
	}
	row := r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	b, err := scanBook(row)
	if err != nil {
		return nil, mapErr(err, "book")
	}
	return b, nil
}

func (r *BookRepository) Create(ctx context.Context, b *entity.Book) error {
	p, err := paramsOf(b)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO books (user_id, title, author, genre, pages, status, current_page, rating,
			date_started, date_finished)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id::text, created_at, updated_at
	`, b.UserID, b.Title, b.Author, textParam(b.Genre), p.pages, string(b.Status), p.currentPage,
		p.rating, tsParam(b.DateStarted), tsParam(b.DateFinished))

	return mapErr(row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt), "book")
}

// Update writes every mutable column in one statement.
func (r *BookRepository) Update(ctx context.Context, b *entity.Book) error {
	if _, err := uuid.Parse(b.ID); err != nil {
		return apperror.NotFound("book not found")
	}
	p, err := paramsOf(b)
	if err != nil {
		return err
	}
	b.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE books
		SET title = $1, author = $2, genre = $3, pages = $4, status = $5, current_page = $6,
			rating = $7, date_started = $8, date_finished = $9, updated_at = $10
		WHERE id = $11
	`, b.Title, b.Author, textParam(b.Genre), p.pages, string(b.Status), p.currentPage,
		p.rating, tsParam(b.DateStarted), tsParam(b.DateFinished), b.UpdatedAt, b.ID)
	if err != nil {
		return mapErr(err, "book")
	}
	if res.RowsAffected() == 0 {
		return apperror.NotFound("book not found")
	}
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NotFound("book not found")
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperror.NotFound("book not found")
	}
	return nil
}

func scanBook(row pgx.Row) (*entity.Book, error) {
	var (
		b                     entity.Book
		status                string
		genre                 pgtype.Text
		pages, rating         pgtype.Int4
		dateStarted, dateDone pgtype.Timestamptz
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Author, &genre, &pages, &status, &b.CurrentPage,
		&rating, &dateStarted, &dateDone, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Status = entity.BookStatus(status)
	if genre.Valid {
		b.Genre = &genre.String
	}
	b.Pages = intPtr(pages)
	b.Rating = intPtr(rating)
	b.DateStarted = timePtr(dateStarted)
	b.DateFinished = timePtr(dateDone)
	return &b, nil
}

func intPtr(v pgtype.Int4) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}

func timePtr(v pgtype.Timestamptz) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func textParam(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// bookParams holds the int4 columns of a book, range-checked for the driver.
type bookParams struct {
	pages, currentPage, rating pgtype.Int4
}

func paramsOf(b *entity.Book) (bookParams, error) {
	var (
		p   bookParams
		err error
	)
	if p.pages, err = int4Param("pages", b.Pages); err != nil {
		return p, err
	}
	if p.currentPage, err = int4Param("current_page", &b.CurrentPage); err != nil {
		return p, err
	}
	if p.rating, err = int4Param("rating", b.Rating); err != nil {
		return p, err
	}
	return p, nil
}

// int4Param refuses values that do not fit in int4 instead of truncating them.
func int4Param(field string, n *int) (pgtype.Int4, error) {
	if n == nil {
		return pgtype.Int4{}, nil
	}
	if *n < math.MinInt32 || *n > math.MaxInt32 {
		return pgtype.Int4{}, apperror.Field(field, "is out of range")
	}
	return pgtype.Int4{Int32: int32(*n), Valid: true}, nil
}

func tsParam(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

var _ repository.BookRepository = (*BookRepository)(nil)
