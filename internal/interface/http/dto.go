package handlers

import (
	"time"

	"github.com/noorfaiz5/Book-worm-hub/internal/application"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/reading"
)

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	YearlyGoal  int       `json:"yearly_goal"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toUser(u *entity.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		YearlyGoal:  u.YearlyGoal,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type bookResponse struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Author          string            `json:"author"`
	Genre           *string           `json:"genre"`
	Pages           *int              `json:"pages"`
	Status          entity.BookStatus `json:"status"`
	CurrentPage     int               `json:"current_page"`
	ProgressPercent int               `json:"progress_percent"`
	Rating          *int              `json:"rating"`
	DateStarted     *time.Time        `json:"date_started"`
	DateFinished    *time.Time        `json:"date_finished"`
	DateAnomaly     bool              `json:"date_anomaly,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func toBook(b entity.Book) bookResponse {
	return bookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Genre:           b.Genre,
		Pages:           b.Pages,
		Status:          b.Status,
		CurrentPage:     b.CurrentPage,
		ProgressPercent: reading.ProgressPercent(b),
		Rating:          b.Rating,
		DateStarted:     b.DateStarted,
		DateFinished:    b.DateFinished,
		DateAnomaly:     b.HasDateAnomaly(),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func toBooks(books []entity.Book) []bookResponse {
	out := make([]bookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBook(b))
	}
	return out
}

type challengeResponse struct {
	ID        string    `json:"id"`
	Year      int       `json:"year"`
	Goal      int       `json:"goal"`
	Completed int       `json:"completed"`
	Drifted   bool      `json:"drifted"`
	CreatedAt time.Time `json:"created_at"`
}

func toChallenge(v *application.ChallengeView) challengeResponse {
	return challengeResponse{
		ID:        v.ID,
		Year:      v.Year,
		Goal:      v.Goal,
		Completed: v.Completed,
		Drifted:   v.Drifted,
		CreatedAt: v.CreatedAt,
	}
}

type monthlyResponse struct {
	Year                 int     `json:"year"`
	Month                int     `json:"month"`
	Count                int     `json:"count"`
	Pages                int     `json:"pages"`
	AverageRating        float64 `json:"average_rating"`
	Genres               int     `json:"genres"`
	Target               int     `json:"target"`
	TargetPercent        int     `json:"target_percent"`
	TargetDisplayPercent int     `json:"target_display_percent"`
}

func toMonthly(m application.MonthlyStats) monthlyResponse {
	return monthlyResponse{
		Year:                 m.Rollup.Year,
		Month:                int(m.Rollup.Month),
		Count:                m.Rollup.Count,
		Pages:                m.Rollup.Pages,
		AverageRating:        reading.RoundTenth(m.Rollup.AverageRating),
		Genres:               m.Rollup.Genres,
		Target:               m.Goal.Target,
		TargetPercent:        m.Goal.Percent,
		TargetDisplayPercent: m.Goal.DisplayPercent,
	}
}

type yearlyResponse struct {
	Year           int          `json:"year"`
	Goal           int          `json:"goal"`
	Completed      int          `json:"completed"`
	Percent        int          `json:"percent"`
	DisplayPercent int          `json:"display_percent"`
	Remaining      int          `json:"remaining"`
	ExpectedByNow  int          `json:"expected_by_now"`
	OnTrack        bool         `json:"on_track"`
	Tier           reading.Tier `json:"tier"`
	HasChallenge   bool         `json:"has_challenge"`
}

func toYearly(y application.YearlyStats) yearlyResponse {
	p := y.Progress
	return yearlyResponse{
		Year:           p.Year,
		Goal:           p.Goal,
		Completed:      p.Completed,
		Percent:        p.Percent,
		DisplayPercent: p.DisplayPercent,
		Remaining:      p.Remaining,
		ExpectedByNow:  p.ExpectedByNow,
		OnTrack:        p.OnTrack,
		Tier:           p.Tier,
		HasChallenge:   y.HasChallenge,
	}
}

type genreEntry struct {
	Genre string  `json:"genre"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

type genresResponse struct {
	Entries  []genreEntry `json:"entries"`
	MaxCount int          `json:"max_count"`
}

func toGenres(g reading.GenreDistribution) genresResponse {
	out := genresResponse{Entries: make([]genreEntry, 0, len(g.Entries)), MaxCount: g.MaxCount}
	for _, e := range g.Entries {
		out.Entries = append(out.Entries, genreEntry{Genre: e.Genre, Count: e.Count, Share: reading.RoundTenth(e.Share)})
	}
	return out
}

type quickResponse struct {
	ThisMonthFinished int     `json:"this_month_finished"`
	AverageRating     float64 `json:"average_rating"`
	TotalPages        int     `json:"total_pages"`
	DistinctGenres    int     `json:"distinct_genres"`
}

type dashboardResponse struct {
	Now              time.Time       `json:"now"`
	CurrentlyReading []bookResponse  `json:"currently_reading"`
	RecentlyFinished []bookResponse  `json:"recently_finished"`
	Month            monthlyResponse `json:"month"`
	Year             yearlyResponse  `json:"year"`
	Genres           genresResponse  `json:"genres"`
	Quick            quickResponse   `json:"quick"`
}

func toDashboard(d *application.Dashboard) dashboardResponse {
	return dashboardResponse{
		Now:              d.Now,
		CurrentlyReading: toBooks(d.CurrentlyReading),
		RecentlyFinished: toBooks(d.RecentlyFinished),
		Month:            toMonthly(d.Month),
		Year:             toYearly(d.Year),
		Genres:           toGenres(d.Genres),
		Quick: quickResponse{
			ThisMonthFinished: d.Quick.ThisMonthFinished,
			AverageRating:     reading.RoundTenth(d.Quick.AverageRating),
			TotalPages:        d.Quick.TotalPages,
			DistinctGenres:    d.Quick.DistinctGenres,
		},
	}
}
