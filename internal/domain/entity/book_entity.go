package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
)

// BookStatus is a book's single lifecycle stage.
type BookStatus string

const (
	StatusWantToRead BookStatus = "want-to-read"
	StatusReading    BookStatus = "reading"
	StatusFinished   BookStatus = "finished"
)

// Valid reports whether s is one of the three known statuses.
func (s BookStatus) Valid() bool {
	switch s {
	case StatusWantToRead, StatusReading, StatusFinished:
		return true
	default:
		return false
	}
}

const (
	MinRating = 1
	MaxRating = 5

	// MaxPages bounds pages and current_page; both are stored as int4.
	MaxPages = 100000
)

// Book is stored flat with every status-dependent field nullable.
// Use State for a status-shaped view.
type Book struct {
	ID           string
	UserID       string
	Title        string
	Author       string
	Genre        *string
	Pages        *int
	Status       BookStatus
	CurrentPage  int
	Rating       *int
	DateStarted  *time.Time
	DateFinished *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BookState is the status-tagged view of a Book: WantToRead, Reading or Finished.
type BookState interface {
	Status() BookStatus
}

type WantToRead struct{}

type Reading struct {
	CurrentPage int
	DateStarted *time.Time
}

type Finished struct {
	Rating       *int
	DateStarted  *time.Time
	DateFinished *time.Time
}

func (WantToRead) Status() BookStatus { return StatusWantToRead }
func (Reading) Status() BookStatus    { return StatusReading }
func (Finished) Status() BookStatus   { return StatusFinished }

// State returns the variant matching b.Status. Unknown statuses are treated as want-to-read.
func (b *Book) State() BookState {
	switch b.Status {
	case StatusReading:
		return Reading{CurrentPage: b.CurrentPage, DateStarted: b.DateStarted}
	case StatusFinished:
		return Finished{Rating: b.Rating, DateStarted: b.DateStarted, DateFinished: b.DateFinished}
	default:
		return WantToRead{}
	}
}

// GenreName returns the trimmed genre, or "" when absent.
func (b *Book) GenreName() string {
	if b.Genre == nil {
		return ""
	}
	return strings.TrimSpace(*b.Genre)
}

// PageCount returns the total page count, or 0 when unknown.
func (b *Book) PageCount() int {
	if b.Pages == nil {
		return 0
	}
	return *b.Pages
}

// RatingValue returns the rating, or 0 when unrated.
func (b *Book) RatingValue() int {
	if b.Rating == nil {
		return 0
	}
	return *b.Rating
}

var epoch = time.Unix(0, 0).UTC()

// EffectiveFinishedAt orders finished books: dateFinished, then updatedAt, then the Unix epoch.
func (b *Book) EffectiveFinishedAt() time.Time {
	if b.DateFinished != nil {
		return *b.DateFinished
	}
	if !b.UpdatedAt.IsZero() {
		return b.UpdatedAt
	}
	return epoch
}

// HasDateAnomaly reports a user-supplied dateFinished earlier than dateStarted.
// Such records are kept as-is and only flagged.
func (b *Book) HasDateAnomaly() bool {
	return b.DateStarted != nil && b.DateFinished != nil && b.DateFinished.Before(*b.DateStarted)
}

// In returns a copy with every timestamp converted to loc.
func (b Book) In(loc *time.Location) Book {
	if loc == nil {
		return b
	}
	b.CreatedAt = b.CreatedAt.In(loc)
	b.UpdatedAt = b.UpdatedAt.In(loc)
	if b.DateStarted != nil {
		t := b.DateStarted.In(loc)
		b.DateStarted = &t
	}
	if b.DateFinished != nil {
		t := b.DateFinished.In(loc)
		b.DateFinished = &t
	}
	return b
}

// Transition moves the book to status to, normalising the status-dependent fields.
// Moving to reading stamps dateStarted, moving to finished stamps dateFinished and fills
// currentPage with the page count when known. Leaving finished clears rating and dateFinished.
func (b *Book) Transition(to BookStatus, now time.Time) error {
	if !to.Valid() {
		return apperror.Field("status", "must be one of: want-to-read, reading, finished")
	}
	if b.Status == to {
		return nil
	}
	from := b.Status
	switch to {
	case StatusWantToRead:
		b.CurrentPage = 0
		b.Rating = nil
		b.DateStarted = nil
		b.DateFinished = nil
	case StatusReading:
		if b.DateStarted == nil || from == StatusFinished {
			b.DateStarted = timePtr(now)
		}
		if from == StatusFinished {
			b.CurrentPage = 0
		}
		b.Rating = nil
		b.DateFinished = nil
	case StatusFinished:
		b.DateFinished = timePtr(now)
		if b.Pages != nil && *b.Pages > 0 {
			b.CurrentPage = *b.Pages
		}
	}
	b.Status = to
	return nil
}

// Start begins reading a book that is queued or was already finished.
func (b *Book) Start(now time.Time) error {
	if b.Status == StatusReading {
		return apperror.Conflict("book is already being read")
	}
	return b.Transition(StatusReading, now)
}

// Finish marks the book finished with the caller's rating.
func (b *Book) Finish(now time.Time, rating int) error {
	if b.Status == StatusFinished {
		return apperror.Conflict("book is already finished")
	}
	if rating < MinRating || rating > MaxRating {
		return apperror.Field("rating", "must be between 1 and 5")
	}
	if err := b.Transition(StatusFinished, now); err != nil {
		return err
	}
	b.Rating = &rating
	return nil
}

// SetProgress records the current page of a book being read.
func (b *Book) SetProgress(page int) error {
	if b.Status != StatusReading {
		return apperror.Field("current_page", "progress is only tracked while reading")
	}
	if page < 0 {
		return apperror.Field("current_page", "must be at least 0")
	}
	if page > MaxPages {
		return apperror.Field("current_page", "must be at most "+strconv.Itoa(MaxPages))
	}
	if b.Pages != nil && page > *b.Pages {
		return apperror.Field("current_page", "must not exceed pages ("+strconv.Itoa(*b.Pages)+")")
	}
	b.CurrentPage = page
	return nil
}

// Validate checks the record invariants enforced before persistence.
func (b *Book) Validate() error {
	problems := map[string]string{}
	if strings.TrimSpace(b.Title) == "" {
		problems["title"] = "is required"
	}
	if strings.TrimSpace(b.Author) == "" {
		problems["author"] = "is required"
	}
	if !b.Status.Valid() {
		problems["status"] = "must be one of: want-to-read, reading, finished"
	}
	if b.Pages != nil && (*b.Pages < 1 || *b.Pages > MaxPages) {
		problems["pages"] = "must be between 1 and " + strconv.Itoa(MaxPages)
	}
	switch {
	case b.CurrentPage < 0:
		problems["current_page"] = "must be at least 0"
	case b.CurrentPage > MaxPages:
		problems["current_page"] = "must be at most " + strconv.Itoa(MaxPages)
	case b.Pages != nil && *b.Pages >= 1 && b.CurrentPage > *b.Pages:
		problems["current_page"] = "must not exceed pages"
	}
	if b.Rating != nil {
		switch {
		case *b.Rating < MinRating || *b.Rating > MaxRating:
			problems["rating"] = "must be between 1 and 5"
		case b.Status != StatusFinished:
			problems["rating"] = "only finished books can be rated"
		}
	}
	if b.DateFinished != nil && b.Status != StatusFinished {
		problems["date_finished"] = "only finished books have a finish date"
	}
	if len(problems) > 0 {
		return apperror.Validation("invalid book", problems)
	}
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }
