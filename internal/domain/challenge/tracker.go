// Package challenge resolves yearly reading goals and reconciles challenge
// records against a user's finished books.
package challenge

import (
	"context"
	"strconv"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/reading"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/repository"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
)

// FallbackGoal applies when neither a challenge nor the user carries a positive goal.
const FallbackGoal = entity.DefaultYearlyGoal

// Tracker looks up stored challenges. It never creates or updates records;
// callers decide whether a missing challenge should be created.
type Tracker struct {
	Challenges repository.ChallengeRepository
}

func NewTracker(repo repository.ChallengeRepository) *Tracker {
	return &Tracker{Challenges: repo}
}

// Get returns the challenge for (userID, year) or an apperror NotFound.
// NotFound is the normal outcome for a year the user has not set up yet.
func (t *Tracker) Get(ctx context.Context, userID string, year int) (*entity.ReadingChallenge, error) {
	ch, err := t.Challenges.GetByUserAndYear(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, apperror.NotFound("no reading challenge for " + strconv.Itoa(year))
	}
	return ch, nil
}

// ResolveGoal picks the effective goal: the challenge's goal when one exists,
// then the user's standing yearly goal, then FallbackGoal.
func ResolveGoal(ch *entity.ReadingChallenge, u *entity.User) int {
	if ch != nil {
		return ch.Goal
	}
	if u != nil && u.YearlyGoal > 0 {
		return u.YearlyGoal
	}
	return FallbackGoal
}

// Reconcile returns a copy of ch whose Completed is the number of books
// finished in ch.Year. The input is not modified and nothing is persisted.
func Reconcile(ch entity.ReadingChallenge, books []entity.Book) entity.ReadingChallenge {
	ch.Completed = reading.FinishedInYear(books, ch.Year)
	return ch
}

// Drifted reports whether the stored count differs from the live one.
func Drifted(ch entity.ReadingChallenge, books []entity.Book) bool {
	return ch.Completed != reading.FinishedInYear(books, ch.Year)
}
