package reading

import (
	"slices"
	"time"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
)

// DefaultTopGenres is the number of genres shown in the favourites list.
const DefaultTopGenres = 4

type GenreCount struct {
	Genre string
	Count int
	// Share is Count relative to the largest selected count, 0..100.
	Share float64
}

type GenreDistribution struct {
	Entries  []GenreCount
	MaxCount int
}

// QuickStats is the sidebar summary.
type QuickStats struct {
	ThisMonthFinished int
	// AverageRating is over every finished book; unrated ones count as 0.
	AverageRating  float64
	TotalPages     int
	DistinctGenres int
}

// Genres counts genres across books of any status, most frequent first.
// Ties keep the order in which genres were first seen. Blank genres are ignored.
func Genres(books []entity.Book, topN int) GenreDistribution {
	d := GenreDistribution{Entries: make([]GenreCount, 0)}
	if topN <= 0 {
		return d
	}

	index := make(map[string]int)
	for _, b := range books {
		g := b.GenreName()
		if g == "" {
			continue
		}
		if i, ok := index[g]; ok {
			d.Entries[i].Count++
			continue
		}
		index[g] = len(d.Entries)
		d.Entries = append(d.Entries, GenreCount{Genre: g, Count: 1})
	}

	slices.SortStableFunc(d.Entries, func(a, b GenreCount) int {
		return b.Count - a.Count
	})
	if len(d.Entries) > topN {
		d.Entries = d.Entries[:topN]
	}
	for _, e := range d.Entries {
		d.MaxCount = max(d.MaxCount, e.Count)
	}
	for i := range d.Entries {
		d.Entries[i].Share = float64(d.Entries[i].Count) / float64(d.MaxCount) * 100
	}
	return d
}

// Quick computes the sidebar summary as of now.
func Quick(books []entity.Book, now time.Time) QuickStats {
	s := QuickStats{
		ThisMonthFinished: len(FinishedInMonth(books, now.Year(), now.Month())),
		DistinctGenres:    distinctGenres(books),
	}
	finished, ratingSum := 0, 0
	for _, b := range books {
		if b.Status != entity.StatusFinished {
			continue
		}
		finished++
		s.TotalPages += b.PageCount()
		ratingSum += b.RatingValue()
	}
	if finished > 0 {
		s.AverageRating = float64(ratingSum) / float64(finished)
	}
	return s
}

func distinctGenres(books []entity.Book) int {
	seen := make(map[string]struct{})
	for _, b := range books {
		if g := b.GenreName(); g != "" {
			seen[g] = struct{}{}
		}
	}
	return len(seen)
}
