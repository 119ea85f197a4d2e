package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/challenge"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	repo "github.com/noorfaiz5/Book-worm-hub/internal/domain/repository"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
)

const (
	minChallengeYear = 1900
	maxChallengeYear = 9999
)

// ChallengeView is a stored challenge with its completed count recomputed from the books.
// Drifted reports that the stored count disagrees with the live one.
type ChallengeView struct {
	entity.ReadingChallenge
	Drifted bool
}

type ChallengeService struct {
	Tracker    *challenge.Tracker
	Challenges repo.ChallengeRepository
	Books      repo.BookRepository
	Location   *time.Location
	Logger     logrus.FieldLogger
}

func NewChallengeService(challenges repo.ChallengeRepository, books repo.BookRepository, logger logrus.FieldLogger) *ChallengeService {
	return &ChallengeService{
		Tracker:    challenge.NewTracker(challenges),
		Challenges: challenges,
		Books:      books,
		Location:   time.UTC,
		Logger:     logger,
	}
}

func validYear(year int) error {
	if year < minChallengeYear || year > maxChallengeYear {
		return apperror.Field("year", "must be a four-digit year")
	}
	return nil
}

func validGoal(goal int) error {
	if goal < 1 {
		return apperror.Field("goal", "must be at least 1")
	}
	return nil
}

// Get returns the user's challenge for year with a live completed count,
// or an apperror NotFound when the user has not set one up.
func (s *ChallengeService) Get(ctx context.Context, userID string, year int) (*ChallengeView, error) {
	if err := validYear(year); err != nil {
		return nil, err
	}
	ch, err := s.Tracker.Get(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return s.live(ctx, *ch)
}

func (s *ChallengeService) live(ctx context.Context, ch entity.ReadingChallenge) (*ChallengeView, error) {
	books, err := s.snapshot(ctx, ch.UserID)
	if err != nil {
		return nil, err
	}
	return &ChallengeView{ReadingChallenge: challenge.Reconcile(ch, books), Drifted: challenge.Drifted(ch, books)}, nil
}

func (s *ChallengeService) snapshot(ctx context.Context, userID string) ([]entity.Book, error) {
	books, err := s.Books.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return inLocation(books, loc), nil
}

// Create starts a challenge for year. The stored completed count is seeded from
// the books already finished that year. A second challenge for the same year is a Conflict.
func (s *ChallengeService) Create(ctx context.Context, userID string, year, goal int) (*ChallengeView, error) {
	if err := validYear(year); err != nil {
		return nil, err
	}
	if err := validGoal(goal); err != nil {
		return nil, err
	}
	books, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	ch := challenge.Reconcile(entity.ReadingChallenge{UserID: userID, Year: year, Goal: goal}, books)
	if err := s.Challenges.Create(ctx, &ch); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Conflict("a reading challenge already exists for this year")
		}
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "year": year, "goal": goal}).Info("challenge created")
	}
	return &ChallengeView{ReadingChallenge: ch}, nil
}

// UpdateGoal changes the goal of an existing challenge.
func (s *ChallengeService) UpdateGoal(ctx context.Context, userID string, year, goal int) (*ChallengeView, error) {
	if err := validYear(year); err != nil {
		return nil, err
	}
	if err := validGoal(goal); err != nil {
		return nil, err
	}
	ch, err := s.Tracker.Get(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	ch.Goal = goal
	if err := s.Challenges.Update(ctx, ch); err != nil {
		return nil, err
	}
	return s.live(ctx, *ch)
}

// Reconcile persists the live completed count.
func (s *ChallengeService) Reconcile(ctx context.Context, userID string, year int) (*ChallengeView, error) {
	if err := validYear(year); err != nil {
		return nil, err
	}
	ch, err := s.Tracker.Get(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	books, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !challenge.Drifted(*ch, books) {
		return &ChallengeView{ReadingChallenge: *ch}, nil
	}
	fixed := challenge.Reconcile(*ch, books)
	if err := s.Challenges.Update(ctx, &fixed); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "year": year, "from": ch.Completed, "to": fixed.Completed}).
			Info("challenge reconciled")
	}
	return &ChallengeView{ReadingChallenge: fixed}, nil
}
