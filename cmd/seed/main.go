package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"

	"github.com/noorfaiz5/Book-worm-hub/config"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	pginfra "github.com/noorfaiz5/Book-worm-hub/internal/infrastructure/postgres"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
	"github.com/noorfaiz5/Book-worm-hub/pkg/helpers"
)

const (
	demoUserID = "demo-user"
	demoEmail  = "reader@booknest.local"
)

func ptr[T any](v T) *T { return &v }

// demoBooks returns a shelf spread over the current year relative to now.
func demoBooks(now time.Time) []entity.Book {
	day := func(daysAgo int) *time.Time { return ptr(now.AddDate(0, 0, -daysAgo)) }
	return []entity.Book{
		{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Genre: ptr("Science Fiction"), Pages: ptr(304),
			Status: entity.StatusFinished, CurrentPage: 304, Rating: ptr(5), DateStarted: day(40), DateFinished: day(30)},
		{Title: "Piranesi", Author: "Susanna Clarke", Genre: ptr("Fantasy"), Pages: ptr(272),
			Status: entity.StatusFinished, CurrentPage: 272, Rating: ptr(4), DateStarted: day(12), DateFinished: day(5)},
		{Title: "The Guns of August", Author: "Barbara W. Tuchman", Genre: ptr("History"), Pages: ptr(640),
			Status: entity.StatusReading, CurrentPage: 212, DateStarted: day(4)},
		{Title: "A Wizard of Earthsea", Author: "Ursula K. Le Guin", Genre: ptr("Fantasy"), Pages: ptr(183),
			Status: entity.StatusReading, CurrentPage: 40, DateStarted: day(1)},
		{Title: "Middlemarch", Author: "George Eliot", Genre: ptr("Classics"), Pages: ptr(880),
			Status: entity.StatusWantToRead},
	}
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	books := pginfra.NewBookRepository(pool)
	challenges := pginfra.NewChallengeRepository(pool)

	u := &entity.User{ID: demoUserID, Email: demoEmail, DisplayName: "Demo Reader", YearlyGoal: cfg.DefaultYearlyGoal}
	if err := users.Create(ctx, u); err != nil && !errors.Is(err, apperror.ErrConflict) {
		logger.WithError(err).Fatal("failed to seed user")
	}
	log := logger.WithField("user_id", demoUserID)
	log.Info("user ensured")

	existing, err := books.ListByUser(ctx, demoUserID)
	if err != nil {
		logger.WithError(err).Fatal("failed to list books")
	}
	now := time.Now().In(cfg.Location())
	if len(existing) == 0 {
		for _, b := range demoBooks(now) {
			b.UserID = demoUserID
			if err := b.Validate(); err != nil {
				logger.WithError(err).WithField("title", b.Title).Fatal("invalid demo book")
			}
			if err := books.Create(ctx, &b); err != nil {
				logger.WithError(err).Fatal("failed to seed book")
			}
		}
		log.Info("books seeded")
	} else {
		log.WithField("count", len(existing)).Info("books already present, skipping")
	}

	ch := &entity.ReadingChallenge{UserID: demoUserID, Year: now.Year(), Goal: 24}
	switch err := challenges.Create(ctx, ch); {
	case err == nil:
		log.WithField("year", ch.Year).Info("challenge seeded")
	case errors.Is(err, apperror.ErrConflict):
		log.WithField("year", ch.Year).Info("challenge already present")
	default:
		logger.WithError(err).Fatal("failed to seed challenge")
	}

	if cfg.DevIdentityEnabled() {
		tok, err := helpers.SignDevIDToken(cfg.IdentityDevSecret, cfg.IdentityIssuer, cfg.IdentityAudience,
			helpers.Identity{Subject: demoUserID, Email: demoEmail, Name: u.DisplayName}, 24*time.Hour)
		if err != nil {
			logger.WithError(err).Fatal("failed to sign dev id token")
		}
		log.WithField("id_token", tok).Info("POST it to /api/auth/session to sign in")
	}
}
