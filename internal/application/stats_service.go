package application

import (
	"context"
	"errors"
	"time"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/challenge"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/reading"
	repo "github.com/noorfaiz5/Book-worm-hub/internal/domain/repository"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
)

// StatsService computes dashboard aggregates on demand from the user's full
// book snapshot. Nothing derived is stored.
type StatsService struct {
	Books         repo.BookRepository
	Users         repo.UserRepository
	Tracker       *challenge.Tracker
	Location      *time.Location
	MonthlyTarget int
	Clock         Clock
}

func NewStatsService(books repo.BookRepository, users repo.UserRepository, challenges repo.ChallengeRepository) *StatsService {
	return &StatsService{
		Books:         books,
		Users:         users,
		Tracker:       challenge.NewTracker(challenges),
		Location:      time.UTC,
		MonthlyTarget: reading.DefaultMonthlyTarget,
	}
}

type MonthlyStats struct {
	Rollup reading.MonthlyRollup
	Goal   reading.MonthlyGoal
}

type YearlyStats struct {
	Progress reading.YearlyProgress
	// HasChallenge is false when the goal came from the profile or the fallback.
	HasChallenge bool
}

type Dashboard struct {
	Now              time.Time
	CurrentlyReading []entity.Book
	RecentlyFinished []entity.Book
	Month            MonthlyStats
	Year             YearlyStats
	Genres           reading.GenreDistribution
	Quick            reading.QuickStats
}

func (s *StatsService) now() time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return s.Clock.now().In(loc)
}

func (s *StatsService) snapshot(ctx context.Context, userID string) ([]entity.Book, error) {
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

func (s *StatsService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	books, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	year, err := s.yearly(ctx, userID, books, now.Year(), now)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Now:              now,
		CurrentlyReading: reading.CurrentlyReading(books),
		RecentlyFinished: reading.RecentlyFinished(books, reading.DefaultRecentLimit),
		Month:            s.monthly(books, now.Year(), now.Month()),
		Year:             year,
		Genres:           reading.Genres(books, reading.DefaultTopGenres),
		Quick:            reading.Quick(books, now),
	}, nil
}

// Monthly returns the rollup for (year, month); zero values select the current month.
func (s *StatsService) Monthly(ctx context.Context, userID string, year int, month time.Month) (*MonthlyStats, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	if month < time.January || month > time.December {
		return nil, apperror.Field("month", "must be between 1 and 12")
	}
	books, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	m := s.monthly(books, year, month)
	return &m, nil
}

func (s *StatsService) monthly(books []entity.Book, year int, month time.Month) MonthlyStats {
	target := s.MonthlyTarget
	if target <= 0 {
		target = reading.DefaultMonthlyTarget
	}
	r := reading.Monthly(books, year, month)
	return MonthlyStats{Rollup: r, Goal: reading.MonthlyTarget(r, target)}
}

// Yearly returns the annual progress for year; zero selects the current year.
func (s *StatsService) Yearly(ctx context.Context, userID string, year int) (*YearlyStats, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	books, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	y, err := s.yearly(ctx, userID, books, year, now)
	if err != nil {
		return nil, err
	}
	return &y, nil
}

func (s *StatsService) yearly(ctx context.Context, userID string, books []entity.Book, year int, now time.Time) (YearlyStats, error) {
	ch, err := s.Tracker.Get(ctx, userID, year)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return YearlyStats{}, err
	}
	var u *entity.User
	if ch == nil && s.Users != nil {
		u, err = s.Users.GetByID(ctx, userID)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return YearlyStats{}, err
		}
	}
	goal := challenge.ResolveGoal(ch, u)
	return YearlyStats{Progress: reading.Yearly(books, year, goal, now), HasChallenge: ch != nil}, nil
}

// Genres returns the top genres; topN <= 0 selects the default.
func (s *StatsService) Genres(ctx context.Context, userID string, topN int) (*reading.GenreDistribution, error) {
	if topN <= 0 {
		topN = reading.DefaultTopGenres
	}
	books, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	g := reading.Genres(books, topN)
	return &g, nil
}
