package reading

import (
	"time"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
)

// DefaultMonthlyTarget is the monthly book target used when none is configured.
const DefaultMonthlyTarget = 6

// MonthlyRollup summarises the books finished in one calendar month.
type MonthlyRollup struct {
	Year          int
	Month         time.Month
	Count         int
	Pages         int
	AverageRating float64
	Genres        int
}

// MonthlyGoal compares a rollup's count against a monthly target.
type MonthlyGoal struct {
	Target         int
	Percent        int
	DisplayPercent int
}

// YearlyProgress is the annual challenge view for one year.
//
// OnTrack uses month granularity: completed >= ceil(goal * monthsElapsed / 12).
// ExpectedByNow uses day granularity and is informational only. The two can
// disagree near month boundaries.
type YearlyProgress struct {
	Year           int
	Goal           int
	Completed      int
	Percent        int
	DisplayPercent int
	Remaining      int
	ExpectedByNow  int
	OnTrack        bool
	Tier           Tier
}

// Tier is the motivational band of a yearly percentage.
type Tier string

const (
	TierBeginning Tier = "beginning"
	TierStarted   Tier = "started"
	TierHalfway   Tier = "halfway"
	TierAlmost    Tier = "almost"
	TierComplete  Tier = "complete"
)

// TierFor maps a completion percentage to its band.
func TierFor(percent int) Tier {
	switch {
	case percent >= 100:
		return TierComplete
	case percent >= 75:
		return TierAlmost
	case percent >= 50:
		return TierHalfway
	case percent >= 25:
		return TierStarted
	default:
		return TierBeginning
	}
}

func finishedWithin(b entity.Book, match func(time.Time) bool) bool {
	return b.Status == entity.StatusFinished && b.DateFinished != nil && match(*b.DateFinished)
}

// FinishedInMonth returns finished books whose dateFinished falls in (year, month).
func FinishedInMonth(books []entity.Book, year int, month time.Month) []entity.Book {
	out := make([]entity.Book, 0)
	for _, b := range books {
		if finishedWithin(b, func(t time.Time) bool { return t.Year() == year && t.Month() == month }) {
			out = append(out, b)
		}
	}
	return out
}

// FinishedInYear counts finished books whose dateFinished falls in year.
func FinishedInYear(books []entity.Book, year int) int {
	n := 0
	for _, b := range books {
		if finishedWithin(b, func(t time.Time) bool { return t.Year() == year }) {
			n++
		}
	}
	return n
}

// Monthly rolls up the books finished in (year, month). The rating average
// divides by every finished book in the month, rated or not.
func Monthly(books []entity.Book, year int, month time.Month) MonthlyRollup {
	inMonth := FinishedInMonth(books, year, month)
	r := MonthlyRollup{Year: year, Month: month, Count: len(inMonth)}
	ratingSum := 0
	for _, b := range inMonth {
		r.Pages += b.PageCount()
		ratingSum += b.RatingValue()
	}
	if r.Count > 0 {
		r.AverageRating = float64(ratingSum) / float64(r.Count)
	}
	r.Genres = distinctGenres(inMonth)
	return r
}

// MonthlyTarget reports progress of a rollup against target books.
func MonthlyTarget(r MonthlyRollup, target int) MonthlyGoal {
	p := percentOf(r.Count, target)
	return MonthlyGoal{Target: target, Percent: p, DisplayPercent: clampPercent(p)}
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear is 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// DaysElapsed is the number of started days of year at now: 0 before the year
// begins, the whole year once it has ended, otherwise ceil(time since Jan 1 / 24h).
func DaysElapsed(year int, now time.Time) int {
	switch {
	case now.Year() < year:
		return 0
	case now.Year() > year:
		return DaysInYear(year)
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
	elapsed := now.Sub(start)
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) != 0 {
		days++
	}
	return min(days, DaysInYear(year))
}

// MonthsElapsed is the 1-based current month for the current year, 12 for a
// past year and 0 for a future one.
func MonthsElapsed(year int, now time.Time) int {
	switch {
	case now.Year() < year:
		return 0
	case now.Year() > year:
		return 12
	default:
		return int(now.Month())
	}
}

// Yearly computes progress towards goal for year as seen at now.
// A goal <= 0 yields zero percentages and an on-track verdict.
func Yearly(books []entity.Book, year, goal int, now time.Time) YearlyProgress {
	completed := FinishedInYear(books, year)
	p := YearlyProgress{
		Year:      year,
		Goal:      goal,
		Completed: completed,
		Percent:   percentOf(completed, goal),
		Remaining: max(0, goal-completed),
	}
	p.DisplayPercent = clampPercent(p.Percent)
	p.Tier = TierFor(p.Percent)

	required := 0
	if goal > 0 {
		p.ExpectedByNow = ceilDiv(goal*DaysElapsed(year, now), DaysInYear(year))
		required = ceilDiv(goal*MonthsElapsed(year, now), 12)
	}
	p.OnTrack = completed >= required
	return p
}
