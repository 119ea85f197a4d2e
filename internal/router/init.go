package router

import (
	"context"

	"github.com/noorfaiz5/Book-worm-hub/internal/application"
	"github.com/noorfaiz5/Book-worm-hub/internal/container"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/repository"
	"github.com/noorfaiz5/Book-worm-hub/internal/infrastructure/postgres"
	"github.com/noorfaiz5/Book-worm-hub/internal/infrastructure/search"
	handlers "github.com/noorfaiz5/Book-worm-hub/internal/interface/http"
	"github.com/noorfaiz5/Book-worm-hub/internal/interface/middleware"
	"github.com/noorfaiz5/Book-worm-hub/internal/router/modules"
	"github.com/noorfaiz5/Book-worm-hub/pkg/helpers"
)

// Repositories is the storage the modules are built on.
type Repositories struct {
	Users      repository.UserRepository
	Books      repository.BookRepository
	Challenges repository.ChallengeRepository
}

// PostgresRepositories builds the Postgres-backed repositories.
func PostgresRepositories(c *container.Container) Repositories {
	return Repositories{
		Users:      postgres.NewUserRepository(c.PGPool),
		Books:      postgres.NewBookRepository(c.PGPool),
		Challenges: postgres.NewChallengeRepository(c.PGPool),
	}
}

// Services holds the application services shared by the modules.
type Services struct {
	Users      *application.UserService
	Books      *application.BookService
	Challenges *application.ChallengeService
	Stats      *application.StatsService
}

// BuildServices wires services to repos and to whichever optional clients the container carries.
func BuildServices(c *container.Container, repos Repositories) Services {
	cfg := c.Config
	loc := cfg.Location()

	users := application.NewUserService(repos.Users, c.Identity, c.JWT, c.Sessions, c.Logger)
	users.DefaultYearlyGoal = cfg.DefaultYearlyGoal
	users.Brand = c.Brand()

	books := application.NewBookService(repos.Books, repos.Challenges, repos.Users, c.Logger)
	books.Location = loc
	books.Brand = c.Brand()

	if c.GCS != nil && cfg.GCSBucket != "" {
		users.Photos = helpers.NewGCSUploader(c.GCS, cfg.GCSBucket)
	}
	if c.RabbitPub != nil && cfg.MailSendEnabled {
		users.Notifier = c.RabbitPub
		books.Notifier = c.RabbitPub
	}
	if c.ES != nil {
		books.Search = search.NewBookIndex(c.ES, cfg.ESBooksIndex)
	}

	challenges := application.NewChallengeService(repos.Challenges, repos.Books, c.Logger)
	challenges.Location = loc

	stats := application.NewStatsService(repos.Books, repos.Users, repos.Challenges)
	stats.Location = loc
	stats.MonthlyTarget = cfg.MonthlyTarget

	return Services{Users: users, Books: books, Challenges: challenges, Stats: stats}
}

func healthChecks(c *container.Container) map[string]handlers.Check {
	checks := map[string]handlers.Check{}
	if c.PGPool != nil {
		checks["postgres"] = c.PGPool.Ping
	}
	if c.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() }
	}
	return checks
}

// InitModules builds every feature module and registers it with the registry.
// It should be called once during startup.
func InitModules(r *Registry, c *container.Container, svc Services) {
	cfg := c.Config
	guard := modules.Guard{Auth: middleware.Auth(c.JWT, c.Sessions), RDB: c.Redis}

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(healthChecks(c))))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Users, c.Logger, cfg.CookieDomain, cfg.CookieSecure), guard))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, c.Logger), guard))
	r.Add(modules.NewBookModule(handlers.NewBookHandler(svc.Books, cfg.Location(), c.Logger), guard))
	r.Add(modules.NewStatsModule(handlers.NewStatsHandler(svc.Stats), guard))
	r.Add(modules.NewChallengeModule(handlers.NewChallengeHandler(svc.Challenges), guard))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
