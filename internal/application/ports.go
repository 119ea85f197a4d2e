package application

import (
	"context"
	"io"
	"time"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
)

// BookSearcher is the full-text index kept alongside the book store.
type BookSearcher interface {
	Index(ctx context.Context, b entity.Book) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, userID, q string, size int) ([]string, error)
}

// Publisher enqueues a JSON job, such as a mailer.EmailJob.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// Clock returns the current time.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
