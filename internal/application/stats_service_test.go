package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/reading"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
)

func newStats(books *memBooks, users *memUsers, chs *memChallenges, now time.Time) *StatsService {
	s := NewStatsService(books, users, chs)
	s.Clock = fixedClock(now)
	return s
}

func TestDashboard(t *testing.T) {
	now := time.Date(2024, time.July, 15, 10, 0, 0, 0, time.UTC)
	books := newMemBooks(
		entity.Book{ID: "r1", UserID: "u1", Title: "R", Author: "A", Status: entity.StatusReading, Pages: ptr(200), CurrentPage: 50, Genre: ptr("Fantasy")},
		finishedWith("f1", at(2024, 7, 2), 5, 300, "Fantasy"),
		finishedWith("f2", at(2024, 7, 9), 3, 100, "History"),
		finishedWith("f3", at(2024, 6, 20), 4, 250, "Fantasy"),
		entity.Book{ID: "w1", UserID: "u1", Title: "W", Author: "A", Status: entity.StatusWantToRead, Genre: ptr("Poetry")},
	)
	users := newMemUsers(entity.User{ID: "u1", YearlyGoal: 30})
	s := newStats(books, users, newMemChallenges(), now)

	d, err := s.Dashboard(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, []string{"r1"}, bookIDs(d.CurrentlyReading))
	assert.Equal(t, []string{"f2", "f1", "f3"}, bookIDs(d.RecentlyFinished))

	assert.Equal(t, 2, d.Month.Rollup.Count)
	assert.Equal(t, 400, d.Month.Rollup.Pages)
	assert.InDelta(t, 4.0, d.Month.Rollup.AverageRating, 1e-9)
	assert.Equal(t, reading.DefaultMonthlyTarget, d.Month.Goal.Target)

	assert.False(t, d.Year.HasChallenge)
	assert.Equal(t, 30, d.Year.Progress.Goal, "profile goal applies without a challenge")
	assert.Equal(t, 3, d.Year.Progress.Completed)

	require.NotEmpty(t, d.Genres.Entries)
	assert.Equal(t, "Fantasy", d.Genres.Entries[0].Genre)
	assert.Equal(t, 3, d.Genres.MaxCount)

	assert.Equal(t, 2, d.Quick.ThisMonthFinished)
	assert.Equal(t, 650, d.Quick.TotalPages)
}

func TestYearly_GoalResolution(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	books := newMemBooks(finishedWith("f1", at(2024, 1, 2), 5, 100, ""))

	withChallenge := newStats(books, newMemUsers(entity.User{ID: "u1", YearlyGoal: 30}),
		newMemChallenges(entity.ReadingChallenge{UserID: "u1", Year: 2024, Goal: 4}), now)
	y, err := withChallenge.Yearly(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.True(t, y.HasChallenge)
	assert.Equal(t, 4, y.Progress.Goal)
	assert.Equal(t, 25, y.Progress.Percent)

	fallback := newStats(books, newMemUsers(), newMemChallenges(), now)
	y, err = fallback.Yearly(context.Background(), "u1", 2024)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultYearlyGoal, y.Progress.Goal)
}

func TestMonthly_ZoneAndValidation(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	// 2024-01-31 20:00 UTC is 1 February in Jakarta.
	books := newMemBooks(finishedWith("f1", time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC), 4, 120, ""))
	s := newStats(books, newMemUsers(), newMemChallenges(), time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))

	utc, err := s.Monthly(context.Background(), "u1", 2024, time.February)
	require.NoError(t, err)
	assert.Equal(t, 0, utc.Rollup.Count)

	s.Location = jakarta
	local, err := s.Monthly(context.Background(), "u1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, time.February, local.Rollup.Month)
	assert.Equal(t, 1, local.Rollup.Count)

	_, err = s.Monthly(context.Background(), "u1", 2024, 13)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestGenres_DefaultTopN(t *testing.T) {
	books := newMemBooks(
		finishedWith("a", at(2024, 1, 1), 3, 10, "A"),
		finishedWith("b", at(2024, 1, 1), 3, 10, "B"),
		finishedWith("c", at(2024, 1, 1), 3, 10, "C"),
		finishedWith("d", at(2024, 1, 1), 3, 10, "D"),
		finishedWith("e", at(2024, 1, 1), 3, 10, "E"),
	)
	s := newStats(books, newMemUsers(), newMemChallenges(), at(2024, 2, 1))

	g, err := s.Genres(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, g.Entries, reading.DefaultTopGenres)
	assert.Equal(t, "A", g.Entries[0].Genre)
}

func TestStats_PropagatesStoreErrors(t *testing.T) {
	books := newMemBooks()
	books.listErr = assert.AnError
	s := newStats(books, newMemUsers(), newMemChallenges(), at(2024, 2, 1))

	_, err := s.Dashboard(context.Background(), "u1")
	assert.ErrorIs(t, err, assert.AnError)
}

func finishedWith(id string, on time.Time, rating, pages int, genre string) entity.Book {
	b := entity.Book{
		ID: id, UserID: "u1", Title: id, Author: "A", Status: entity.StatusFinished,
		DateFinished: &on, Rating: &rating, Pages: &pages, CurrentPage: pages,
	}
	if genre != "" {
		b.Genre = &genre
	}
	return b
}
