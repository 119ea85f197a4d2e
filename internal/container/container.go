// Package container holds the process-wide infrastructure built in main and
// handed to the router. Optional clients are nil when their service is not configured.
package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/noorfaiz5/Book-worm-hub/config"
	"github.com/noorfaiz5/Book-worm-hub/pkg/helpers"
	mailtpl "github.com/noorfaiz5/Book-worm-hub/pkg/mailer/templates"
)

type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	PGPool *pgxpool.Pool

	Redis     *redis.Client
	GCS       *storage.Client
	ES        *elasticsearch.Client
	RabbitPub *helpers.RabbitPublisher

	JWT      *helpers.JWTManager
	Identity helpers.IdentityVerifier
	Sessions *helpers.SessionStore
}

// New builds the token, identity and session components from cfg. Clients are attached by the caller.
func New(cfg *config.Config, logger *logrus.Logger, pool *pgxpool.Pool, rdb *redis.Client) *Container {
	return &Container{
		Config:   cfg,
		Logger:   logger,
		PGPool:   pool,
		Redis:    rdb,
		JWT:      helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL),
		Identity: NewIdentityVerifier(cfg),
		Sessions: helpers.NewSessionStore(rdb, cfg.RefreshTTL),
	}
}

// NewIdentityVerifier uses the dev secret in development and the published certs otherwise.
func NewIdentityVerifier(cfg *config.Config) helpers.IdentityVerifier {
	if cfg.DevIdentityEnabled() {
		return helpers.NewSecretVerifier(cfg.IdentityIssuer, cfg.IdentityAudience, cfg.IdentityDevSecret)
	}
	return helpers.NewCertVerifier(cfg.IdentityIssuer, cfg.IdentityAudience, cfg.IdentityCertsURL, cfg.IdentityCertsTTL)
}

func (c *Container) Brand() mailtpl.Brand {
	return mailtpl.Brand{
		AppName:        c.Config.AppName,
		CompanyName:    c.Config.CompanyName,
		LogoURL:        c.Config.LogoURL,
		SupportURL:     c.Config.SupportURL,
		UnsubscribeURL: c.Config.UnsubscribeURL,
		DashboardURL:   c.Config.DashboardURL,
	}
}

// Close releases every attached client.
func (c *Container) Close() {
	c.RabbitPub.Close()
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
