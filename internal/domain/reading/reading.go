// Package reading derives reading metrics from a snapshot of a user's books.
//
// Every function is pure: inputs are never modified, nothing is cached and no
// function fails. Missing optional fields (pages, rating, genre, dates) count as
// zero or absent contributions. Calendar windows are evaluated in the location
// carried by the timestamps, so callers convert the snapshot (entity.Book.In)
// and "now" into the reader's time zone first.
package reading

import (
	"math"
	"slices"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
)

// DefaultRecentLimit is the number of books shown as recently finished.
const DefaultRecentLimit = 4

// CurrentlyReading returns the books being read, in input order.
func CurrentlyReading(books []entity.Book) []entity.Book {
	out := make([]entity.Book, 0)
	for _, b := range books {
		if b.Status == entity.StatusReading {
			out = append(out, b)
		}
	}
	return out
}

// RecentlyFinished returns at most limit finished books, newest first.
// Books are ordered by EffectiveFinishedAt; ties keep input order.
func RecentlyFinished(books []entity.Book, limit int) []entity.Book {
	out := make([]entity.Book, 0)
	if limit <= 0 {
		return out
	}
	for _, b := range books {
		if b.Status == entity.StatusFinished {
			out = append(out, b)
		}
	}
	slices.SortStableFunc(out, func(a, b entity.Book) int {
		return b.EffectiveFinishedAt().Compare(a.EffectiveFinishedAt())
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RawProgressPercent is round(currentPage / pages * 100) without clamping.
// It exceeds 100 when the stored current page is past the page count.
func RawProgressPercent(b entity.Book) int {
	pages := b.PageCount()
	if pages <= 0 {
		return 0
	}
	return roundHalfUp(float64(b.CurrentPage) / float64(pages) * 100)
}

// ProgressPercent is the progress bar width: RawProgressPercent clamped to [0, 100].
func ProgressPercent(b entity.Book) int {
	return clampPercent(RawProgressPercent(b))
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}

// percentOf returns round(n / total * 100), or 0 when total <= 0.
func percentOf(n, total int) int {
	if total <= 0 {
		return 0
	}
	return roundHalfUp(float64(n) / float64(total) * 100)
}

// ceilDiv is ceil(a / b) for a >= 0 and b > 0.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// RoundTenth rounds a rating average to one decimal place for display.
func RoundTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
