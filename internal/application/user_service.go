package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	repo "github.com/noorfaiz5/Book-worm-hub/internal/domain/repository"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
	"github.com/noorfaiz5/Book-worm-hub/pkg/helpers"
	"github.com/noorfaiz5/Book-worm-hub/pkg/mailer"
	mailtpl "github.com/noorfaiz5/Book-worm-hub/pkg/mailer/templates"
)

var ErrInvalidSession = apperror.Unauthorized("invalid or expired session")

type UserService struct {
	Repo              repo.UserRepository
	Identity          helpers.IdentityVerifier
	JWT               *helpers.JWTManager
	Sessions          *helpers.SessionStore
	Photos            Uploader
	Notifier          Publisher
	Brand             mailtpl.Brand
	DefaultYearlyGoal int
	Logger            logrus.FieldLogger
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func NewUserService(users repo.UserRepository, identity helpers.IdentityVerifier, jwt *helpers.JWTManager, sessions *helpers.SessionStore, logger logrus.FieldLogger) *UserService {
	return &UserService{
		Repo:              users,
		Identity:          identity,
		JWT:               jwt,
		Sessions:          sessions,
		DefaultYearlyGoal: entity.DefaultYearlyGoal,
		Logger:            logger,
	}
}

// SignIn verifies a provider ID token, creates the user on first sight and
// opens a session. created reports whether the user was new.
func (s *UserService) SignIn(ctx context.Context, idToken string) (u *entity.User, pair TokenPair, created bool, err error) {
	id, err := s.Identity.Verify(ctx, idToken)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Info("id token rejected")
		}
		return nil, TokenPair{}, false, apperror.Unauthorized("invalid id token")
	}

	u, err = s.Repo.GetByID(ctx, id.Subject)
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrNotFound):
		u, err = s.createUser(ctx, id)
		if err != nil {
			return nil, TokenPair{}, false, err
		}
		created = true
	default:
		return nil, TokenPair{}, false, err
	}

	pair, err = s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, false, err
	}
	return u, pair, created, nil
}

func (s *UserService) createUser(ctx context.Context, id *helpers.Identity) (*entity.User, error) {
	goal := s.DefaultYearlyGoal
	if goal <= 0 {
		goal = entity.DefaultYearlyGoal
	}
	u := &entity.User{
		ID:          id.Subject,
		Email:       id.Email,
		DisplayName: strings.TrimSpace(id.Name),
		PhotoURL:    id.Picture,
		YearlyGoal:  goal,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Conflict("email is already linked to another account")
		}
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user created")
	}
	s.enqueue(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(s.Brand, u.DisplayName, u.Email),
	})
	return u, nil
}

// IssueTokens generates access/refresh tokens and records the session.
func (s *UserService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := s.tokens(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate tokens failed")
		}
		return TokenPair{}, err
	}
	if err := s.Sessions.Save(ctx, helpers.Session{UserID: u.ID, Email: u.Email, Name: u.DisplayName, SessionID: sid}); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session save failed")
	}
	return pair, nil
}

func (s *UserService) tokens(userID, sid string) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session id and both tokens.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidSession
	}
	if _, err := s.Repo.GetByID(ctx, claims.UserID); err != nil {
		return TokenPair{}, "", ErrInvalidSession
	}
	if s.Sessions.Enabled() {
		sess, err := s.Sessions.Get(ctx, claims.UserID)
		if err != nil || sess == nil || sess.SessionID != claims.SessionID {
			return TokenPair{}, "", ErrInvalidSession
		}
	}

	sid := uuid.NewString()
	pair, err := s.tokens(claims.UserID, sid)
	if err != nil {
		return TokenPair{}, "", err
	}
	if err := s.Sessions.Rotate(ctx, claims.UserID, sid); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", claims.UserID).Warn("session rotate failed")
	}
	return pair, claims.UserID, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.Sessions.Delete(ctx, userID)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return s.Repo.GetByID(ctx, userID)
}

// UpdateProfileInput is a partial update; nil fields are left unchanged.
type UpdateProfileInput struct {
	DisplayName *string
	PhotoURL    *string
	YearlyGoal  *int
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	if in.YearlyGoal != nil && *in.YearlyGoal < 1 {
		return nil, apperror.Field("yearly_goal", "must be at least 1")
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.DisplayName != nil {
		u.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.PhotoURL != nil {
		u.PhotoURL = strings.TrimSpace(*in.PhotoURL)
	}
	if in.YearlyGoal != nil {
		u.YearlyGoal = *in.YearlyGoal
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	if err := s.Sessions.Touch(ctx, u.ID, u.DisplayName); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("session touch failed")
	}
	return u, nil
}

// UploadPhoto stores an image and makes it the user's profile photo.
func (s *UserService) UploadPhoto(ctx context.Context, userID string, r io.Reader, filename, contentType string) (*entity.User, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperror.Field("photo", "must be an image")
	}
	if s.Photos == nil {
		return nil, apperror.Internal("photo storage is not configured", nil)
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	url, err := s.Photos.Upload(ctx, helpers.PhotoObjectPath(userID, filename), contentType, r)
	if err != nil {
		return nil, apperror.Internal("photo upload failed", err)
	}
	u.PhotoURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// enqueue publishes a job when a notifier is configured. Failures are logged, never returned.
func (s *UserService) enqueue(ctx context.Context, job mailer.EmailJob) {
	publish(ctx, s.Notifier, s.Logger, job)
}

func publish(ctx context.Context, p Publisher, logger logrus.FieldLogger, job mailer.EmailJob) {
	if p == nil || job.To == "" {
		return
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := p.PublishJSON(c, job); err != nil && logger != nil {
		logger.WithError(err).WithField("template", job.Template).Warn("enqueue email failed")
	}
}
