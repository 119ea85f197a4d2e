package application

import (
	"context"
	"errors"
	"expvar"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/reading"
	repo "github.com/noorfaiz5/Book-worm-hub/internal/domain/repository"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
	"github.com/noorfaiz5/Book-worm-hub/pkg/mailer"
	mailtpl "github.com/noorfaiz5/Book-worm-hub/pkg/mailer/templates"
)

var (
	booksCreated  = expvar.NewInt("books_created")
	booksFinished = expvar.NewInt("books_finished")
	booksDeleted  = expvar.NewInt("books_deleted")
)

const searchLimit = 20

type BookService struct {
	Books      repo.BookRepository
	Challenges repo.ChallengeRepository
	Users      repo.UserRepository
	Search     BookSearcher
	Notifier   Publisher
	Brand      mailtpl.Brand
	Location   *time.Location
	Clock      Clock
	Logger     logrus.FieldLogger
}

func NewBookService(books repo.BookRepository, challenges repo.ChallengeRepository, users repo.UserRepository, logger logrus.FieldLogger) *BookService {
	return &BookService{Books: books, Challenges: challenges, Users: users, Location: time.UTC, Logger: logger}
}

func (s *BookService) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// List returns the user's books, optionally only those with status.
func (s *BookService) List(ctx context.Context, userID string, status entity.BookStatus) ([]entity.Book, error) {
	if status != "" && !status.Valid() {
		return nil, apperror.Field("status", "must be one of: want-to-read, reading, finished")
	}
	books, err := s.Books.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return books, nil
	}
	out := make([]entity.Book, 0, len(books))
	for _, b := range books {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out, nil
}

// Get returns the book when userID owns it. Books owned by someone else are reported as missing.
func (s *BookService) Get(ctx context.Context, userID, id string) (*entity.Book, error) {
	b, err := s.Books.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, apperror.NotFound("book not found")
	}
	return b, nil
}

type CreateBookInput struct {
	Title        string
	Author       string
	Genre        *string
	Pages        *int
	Status       entity.BookStatus
	CurrentPage  *int
	Rating       *int
	DateStarted  *time.Time
	DateFinished *time.Time
}

func (s *BookService) Create(ctx context.Context, userID string, in CreateBookInput) (*entity.Book, error) {
	now := s.Clock.now()
	b := &entity.Book{
		UserID: userID,
		Title:  strings.TrimSpace(in.Title),
		Author: strings.TrimSpace(in.Author),
		Genre:  cleanGenre(in.Genre),
		Pages:  in.Pages,
		Status: entity.StatusWantToRead,
	}
	if in.Status != "" {
		if err := b.Transition(in.Status, now); err != nil {
			return nil, err
		}
	}
	applyExplicit(b, in.CurrentPage, in.Rating, in.DateStarted, in.DateFinished)

	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.Books.Create(ctx, b); err != nil {
		return nil, err
	}
	booksCreated.Add(1)
	s.index(ctx, *b)
	if b.Status == entity.StatusFinished {
		booksFinished.Add(1)
		s.afterFinish(ctx, b)
	}
	return b, nil
}

// UpdateBookInput is a partial update. A status change is applied first so that
// explicit fields in the same request win over the transition's defaults.
type UpdateBookInput struct {
	Title        *string
	Author       *string
	Genre        *string
	Pages        *int
	Status       *entity.BookStatus
	CurrentPage  *int
	Rating       *int
	DateStarted  *time.Time
	DateFinished *time.Time
}

func (s *BookService) Update(ctx context.Context, userID, id string, in UpdateBookInput) (*entity.Book, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	wasFinished := b.Status == entity.StatusFinished

	if in.Status != nil {
		if err := b.Transition(*in.Status, s.Clock.now()); err != nil {
			return nil, err
		}
	}
	if in.Title != nil {
		b.Title = strings.TrimSpace(*in.Title)
	}
	if in.Author != nil {
		b.Author = strings.TrimSpace(*in.Author)
	}
	if in.Genre != nil {
		b.Genre = cleanGenre(in.Genre)
	}
	if in.Pages != nil {
		b.Pages = in.Pages
	}
	applyExplicit(b, in.CurrentPage, in.Rating, in.DateStarted, in.DateFinished)

	if err := s.save(ctx, b); err != nil {
		return nil, err
	}
	if !wasFinished && b.Status == entity.StatusFinished {
		booksFinished.Add(1)
		s.afterFinish(ctx, b)
	}
	return b, nil
}

func (s *BookService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.Books.Delete(ctx, id); err != nil {
		return err
	}
	booksDeleted.Add(1)
	if s.Search != nil {
		if err := s.Search.Remove(ctx, id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("book_id", id).Warn("search remove failed")
		}
	}
	return nil
}

// Start moves a queued or finished book to reading.
func (s *BookService) Start(ctx context.Context, userID, id string) (*entity.Book, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := b.Start(s.Clock.now()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Progress records the current page of a book being read.
func (s *BookService) Progress(ctx context.Context, userID, id string, page int) (*entity.Book, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := b.SetProgress(page); err != nil {
		return nil, err
	}
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Finish marks a book finished with a rating and refreshes the year's challenge.
func (s *BookService) Finish(ctx context.Context, userID, id string, rating int) (*entity.Book, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := b.Finish(s.Clock.now(), rating); err != nil {
		return nil, err
	}
	if err := s.save(ctx, b); err != nil {
		return nil, err
	}
	booksFinished.Add(1)
	s.afterFinish(ctx, b)
	return b, nil
}

// SearchBooks returns the user's books matching q. The index supplies the
// ranking; the store supplies the records. Without an index, or when it
// fails, a case-insensitive substring match over title, author and genre is used.
func (s *BookService) SearchBooks(ctx context.Context, userID, q string) ([]entity.Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Field("q", "is required")
	}
	books, err := s.Books.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.Search != nil {
		ids, err := s.Search.Search(ctx, userID, q, searchLimit)
		if err == nil {
			byID := make(map[string]entity.Book, len(books))
			for _, b := range books {
				byID[b.ID] = b
			}
			out := make([]entity.Book, 0, len(ids))
			for _, id := range ids {
				if b, ok := byID[id]; ok {
					out = append(out, b)
				}
			}
			return out, nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("search index unavailable, falling back to scan")
		}
	}

	needle := strings.ToLower(q)
	out := make([]entity.Book, 0)
	for _, b := range books {
		hay := strings.ToLower(b.Title + "\n" + b.Author + "\n" + b.GenreName())
		if strings.Contains(hay, needle) {
			out = append(out, b)
			if len(out) == searchLimit {
				break
			}
		}
	}
	return out, nil
}

// save validates the merged record and writes it in one update.
func (s *BookService) save(ctx context.Context, b *entity.Book) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.Books.Update(ctx, b); err != nil {
		return err
	}
	s.index(ctx, *b)
	return nil
}

func (s *BookService) index(ctx context.Context, b entity.Book) {
	if s.Search == nil {
		return
	}
	if err := s.Search.Index(ctx, b); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("book_id", b.ID).Warn("search index failed")
	}
}

// afterFinish refreshes the stored completed count of the challenge for the
// finish year and sends a congratulation when this book reached the goal.
// Failures are logged; the book itself is already saved.
func (s *BookService) afterFinish(ctx context.Context, b *entity.Book) {
	if s.Challenges == nil || b.DateFinished == nil {
		return
	}
	year := b.DateFinished.In(s.loc()).Year()
	log := s.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithFields(logrus.Fields{"user_id": b.UserID, "year": year})

	ch, err := s.Challenges.GetByUserAndYear(ctx, b.UserID, year)
	if err != nil || ch == nil {
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			log.WithError(err).Warn("challenge lookup failed")
		}
		return
	}
	books, err := s.Books.ListByUser(ctx, b.UserID)
	if err != nil {
		log.WithError(err).Warn("list books for challenge failed")
		return
	}
	completed := reading.FinishedInYear(inLocation(books, s.loc()), year)
	previous := ch.Completed
	if completed != previous {
		ch.Completed = completed
		if err := s.Challenges.Update(ctx, ch); err != nil {
			log.WithError(err).Warn("challenge completed refresh failed")
		}
	}
	if completed == ch.Goal && previous < ch.Goal {
		s.notifyGoalReached(ctx, b, ch)
	}
}

func (s *BookService) notifyGoalReached(ctx context.Context, b *entity.Book, ch *entity.ReadingChallenge) {
	if s.Notifier == nil || s.Users == nil {
		return
	}
	u, err := s.Users.GetByID(ctx, b.UserID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", b.UserID).Warn("load user for notification failed")
		}
		return
	}
	publish(ctx, s.Notifier, s.Logger, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.ChallengeCompleted,
		Data:     mailtpl.NewChallengeCompletedData(s.Brand, u.DisplayName, u.Email, ch.Year, ch.Goal, ch.Goal, b.Title),
	})
}

func applyExplicit(b *entity.Book, currentPage, rating *int, started, finished *time.Time) {
	if currentPage != nil {
		b.CurrentPage = *currentPage
	}
	if rating != nil {
		b.Rating = rating
	}
	if started != nil {
		b.DateStarted = started
	}
	if finished != nil {
		b.DateFinished = finished
	}
}

// cleanGenre trims g and maps blank to absent.
func cleanGenre(g *string) *string {
	if g == nil {
		return nil
	}
	v := strings.TrimSpace(*g)
	if v == "" {
		return nil
	}
	return &v
}

func inLocation(books []entity.Book, loc *time.Location) []entity.Book {
	out := make([]entity.Book, len(books))
	for i, b := range books {
		out[i] = b.In(loc)
	}
	return out
}
