package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noorfaiz5/Book-worm-hub/internal/application"
	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	"github.com/noorfaiz5/Book-worm-hub/internal/interface/middleware"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
	"github.com/noorfaiz5/Book-worm-hub/pkg/helpers"
	"github.com/noorfaiz5/Book-worm-hub/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// store is an in-memory implementation of the three repositories.
type store struct {
	mu         sync.Mutex
	seq        int
	users      map[string]entity.User
	books      map[string]entity.Book
	order      []string
	challenges map[string]entity.ReadingChallenge
}

func newStore() *store {
	return &store{users: map[string]entity.User{}, books: map[string]entity.Book{}, challenges: map[string]entity.ReadingChallenge{}}
}

type userRepo struct{ *store }
type bookRepo struct{ *store }
type challengeRepo struct{ *store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok {
		return apperror.Conflict("user already exists")
	}
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user not found")
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (r userRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r bookRepo) ListByUser(_ context.Context, userID string) ([]entity.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Book{}
	for _, id := range r.order {
		if b, ok := r.books[id]; ok && b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r bookRepo) GetByID(_ context.Context, id string) (*entity.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, apperror.NotFound("book not found")
	}
	return &b, nil
}

func (r bookRepo) Create(_ context.Context, b *entity.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	b.ID = fmt.Sprintf("b%d", r.seq)
	b.CreatedAt, b.UpdatedAt = time.Now(), time.Now()
	r.books[b.ID] = *b
	r.order = append(r.order, b.ID)
	return nil
}

func (r bookRepo) Update(_ context.Context, b *entity.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.UpdatedAt = time.Now()
	r.books[b.ID] = *b
	return nil
}

func (r bookRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.books, id)
	return nil
}

func chKey(uid string, year int) string { return fmt.Sprintf("%s/%d", uid, year) }

func (r challengeRepo) GetByUserAndYear(_ context.Context, uid string, year int) (*entity.ReadingChallenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challenges[chKey(uid, year)]
	if !ok {
		return nil, apperror.NotFound("reading challenge not found")
	}
	return &ch, nil
}

func (r challengeRepo) Create(_ context.Context, ch *entity.ReadingChallenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.challenges[chKey(ch.UserID, ch.Year)]; ok {
		return apperror.Conflict("reading challenge already exists")
	}
	ch.ID = "ch-" + chKey(ch.UserID, ch.Year)
	r.challenges[chKey(ch.UserID, ch.Year)] = *ch
	return nil
}

func (r challengeRepo) Update(_ context.Context, ch *entity.ReadingChallenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.challenges[chKey(ch.UserID, ch.Year)] = *ch
	return nil
}

const (
	devSecret = "dev-secret"
	devIssuer = "https://issuer.test"
	devAud    = "booknest"
)

type env struct {
	engine *gin.Engine
	store  *store
	jwt    *helpers.JWTManager
}

// newEnv wires the handlers the way the router does, with the user id taken
// from the X-Test-User header instead of a token.
func newEnv(t *testing.T) *env {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s := newStore()
	users, books, chs := userRepo{s}, bookRepo{s}, challengeRepo{s}
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	sessions := helpers.NewSessionStore(nil, time.Hour)

	userSvc := application.NewUserService(users, helpers.NewSecretVerifier(devIssuer, devAud, devSecret), jwt, sessions, logger)
	bookSvc := application.NewBookService(books, chs, users, logger)
	chSvc := application.NewChallengeService(chs, books, logger)
	statsSvc := application.NewStatsService(books, users, chs)

	auth := NewAuthHandler(userSvc, logger, "", false)
	user := NewUserHandler(userSvc, logger)
	book := NewBookHandler(bookSvc, time.UTC, logger)
	stats := NewStatsHandler(statsSvc)
	ch := NewChallengeHandler(chSvc)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/session", auth.SignIn)
	api.POST("/refresh", auth.Refresh)

	p := api.Group("/")
	p.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set(middleware.CtxUserIDKey, uid)
		}
	})
	p.POST("/logout", auth.Logout)
	p.GET("/profile", user.GetProfile)
	p.PUT("/profile", user.UpdateProfile)
	p.POST("/profile/photo", user.UploadPhoto)
	p.GET("/books", book.List)
	p.POST("/books", book.Create)
	p.GET("/books/search", book.Search)
	p.GET("/books/:id", book.Get)
	p.PUT("/books/:id", book.Update)
	p.DELETE("/books/:id", book.Delete)
	p.POST("/books/:id/start", book.Start)
	p.POST("/books/:id/progress", book.Progress)
	p.POST("/books/:id/finish", book.Finish)
	p.GET("/stats/dashboard", stats.Dashboard)
	p.GET("/stats/monthly", stats.Monthly)
	p.GET("/stats/yearly", stats.Yearly)
	p.GET("/stats/genres", stats.Genres)
	p.POST("/challenges", ch.Create)
	p.GET("/challenges/:year", ch.Get)
	p.PUT("/challenges/:year", ch.UpdateGoal)
	p.POST("/challenges/:year/reconcile", ch.Reconcile)

	return &env{engine: r, store: s, jwt: jwt}
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func (e *env) do(t *testing.T, method, path, uid string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("X-Test-User", uid)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var out envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestSignInAndRefresh(t *testing.T) {
	e := newEnv(t)
	tok, err := helpers.SignDevIDToken(devSecret, devIssuer, devAud, helpers.Identity{Subject: "uid-1", Email: "ada@example.com", Name: "Ada"}, time.Minute)
	require.NoError(t, err)

	w, res := e.do(t, http.MethodPost, "/api/auth/session", "", map[string]string{"id_token": tok})
	assert.Equal(t, http.StatusCreated, w.Code)
	u := decode[userResponse](t, res.Data)
	assert.Equal(t, "uid-1", u.ID)
	assert.Equal(t, entity.DefaultYearlyGoal, u.YearlyGoal)

	var refresh *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.RefreshCookie {
			refresh = c
		}
	}
	require.NotNil(t, refresh)

	w, _ = e.do(t, http.MethodPost, "/api/auth/session", "", map[string]string{"id_token": tok})
	assert.Equal(t, http.StatusOK, w.Code, "second sign-in returns the existing user")

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	req.AddCookie(refresh)
	rw := httptest.NewRecorder()
	e.engine.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusOK, rw.Code)

	w, res = e.do(t, http.MethodPost, "/api/refresh", "", map[string]string{"refresh_token": "junk"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, string(apperror.CodeUnauthorized), res.Error.Code)

	w, res = e.do(t, http.MethodPost, "/api/auth/session", "", map[string]string{"id_token": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, res.Error.Details, "id_token")
}

func TestProfile(t *testing.T) {
	e := newEnv(t)
	e.store.users["u1"] = entity.User{ID: "u1", Email: "a@b.c", DisplayName: "A", YearlyGoal: 12}

	w, res := e.do(t, http.MethodPut, "/api/profile", "u1", map[string]any{"yearly_goal": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, res.Error.Details, "yearly_goal")

	w, res = e.do(t, http.MethodPut, "/api/profile", "u1", map[string]any{"display_name": "Ada", "yearly_goal": 24})
	require.Equal(t, http.StatusOK, w.Code)
	u := decode[userResponse](t, res.Data)
	assert.Equal(t, "Ada", u.DisplayName)
	assert.Equal(t, 24, u.YearlyGoal)

	w, _ = e.do(t, http.MethodGet, "/api/profile", "ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, res = e.do(t, http.MethodPost, "/api/profile/photo", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, res.Error.Details, "photo")
}

func TestBookPageBounds(t *testing.T) {
	e := newEnv(t)

	for _, pages := range []int{4294967297, 4294967296, entity.MaxPages + 1} {
		w, res := e.do(t, http.MethodPost, "/api/books", "u1", map[string]any{"title": "Dune", "author": "Herbert", "pages": pages})
		require.Equal(t, http.StatusBadRequest, w.Code, "pages=%d", pages)
		assert.Equal(t, string(apperror.CodeValidation), res.Error.Code)
		assert.Contains(t, res.Error.Details, "pages")
	}

	w, res := e.do(t, http.MethodPost, "/api/books", "u1", map[string]any{"title": "Dune", "author": "Herbert"})
	require.Equal(t, http.StatusCreated, w.Code)
	path := "/api/books/" + decode[bookResponse](t, res.Data).ID

	w, res = e.do(t, http.MethodPut, path, "u1", map[string]any{"pages": 4294967297})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, res.Error.Details, "pages")

	w, _ = e.do(t, http.MethodPost, path+"/start", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, res = e.do(t, http.MethodPost, path+"/progress", "u1", map[string]any{"current_page": 4294967297})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, res.Error.Details, "current_page")

	w, res = e.do(t, http.MethodGet, path, "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[bookResponse](t, res.Data)
	assert.Nil(t, got.Pages)
	assert.Equal(t, 0, got.CurrentPage)
}

func TestBookLifecycle(t *testing.T) {
	e := newEnv(t)

	w, res := e.do(t, http.MethodPost, "/api/books", "u1", map[string]any{"title": " ", "author": "X", "rating": 9})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(apperror.CodeValidation), res.Error.Code)
	assert.Contains(t, res.Error.Details, "title")

	w, res = e.do(t, http.MethodPost, "/api/books", "u1", map[string]any{"title": "Dune", "author": "Herbert", "pages": 400, "genre": "SF"})
	require.Equal(t, http.StatusCreated, w.Code)
	b := decode[bookResponse](t, res.Data)
	assert.Equal(t, entity.StatusWantToRead, b.Status)
	path := "/api/books/" + b.ID

	w, _ = e.do(t, http.MethodGet, path, "u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "other users cannot see the book")

	w, res = e.do(t, http.MethodPost, path+"/start", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.StatusReading, decode[bookResponse](t, res.Data).Status)

	w, res = e.do(t, http.MethodPost, path+"/progress", "u1", map[string]any{"current_page": 100})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 25, decode[bookResponse](t, res.Data).ProgressPercent)

	w, res = e.do(t, http.MethodPost, path+"/finish", "u1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, res.Error.Details, "rating")

	w, res = e.do(t, http.MethodPost, path+"/finish", "u1", map[string]any{"rating": 5})
	require.Equal(t, http.StatusOK, w.Code)
	done := decode[bookResponse](t, res.Data)
	assert.Equal(t, entity.StatusFinished, done.Status)
	assert.Equal(t, 400, done.CurrentPage)
	assert.Equal(t, 100, done.ProgressPercent)

	w, res = e.do(t, http.MethodPut, path, "u1", map[string]any{"date_started": "2024-03-10", "date_finished": "2024-03-01"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[bookResponse](t, res.Data).DateAnomaly)

	w, res = e.do(t, http.MethodPut, path, "u1", map[string]any{"date_started": "10/03/2024"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, res.Error.Details, "date_started")

	w, res = e.do(t, http.MethodGet, "/api/books?status=finished", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]bookResponse](t, res.Data), 1)

	w, _ = e.do(t, http.MethodGet, "/api/books?status=abandoned", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, res = e.do(t, http.MethodGet, "/api/books/search?q=herb", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]bookResponse](t, res.Data), 1)

	w, _ = e.do(t, http.MethodDelete, path, "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = e.do(t, http.MethodGet, path, "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	now := time.Now().UTC()
	rating, pages, genre := 4, 200, "Poetry"
	e.store.books["x"] = entity.Book{ID: "x", UserID: "u1", Title: "T", Author: "A", Status: entity.StatusFinished, Rating: &rating, Pages: &pages, CurrentPage: 200, Genre: &genre, DateFinished: &now}
	e.store.order = []string{"x"}

	w, res := e.do(t, http.MethodGet, "/api/stats/dashboard", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	d := decode[dashboardResponse](t, res.Data)
	assert.Equal(t, 1, d.Month.Count)
	assert.Equal(t, 1, d.Year.Completed)
	assert.Equal(t, entity.DefaultYearlyGoal, d.Year.Goal)
	assert.False(t, d.Year.HasChallenge)
	assert.Equal(t, "Poetry", d.Genres.Entries[0].Genre)
	assert.InDelta(t, 4.0, d.Quick.AverageRating, 1e-9)

	w, _ = e.do(t, http.MethodGet, "/api/stats/monthly?month=13", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, res = e.do(t, http.MethodGet, "/api/stats/monthly?month=abc", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, res.Error.Details, "month")

	w, res = e.do(t, http.MethodGet, fmt.Sprintf("/api/stats/yearly?year=%d", now.Year()-1), "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[yearlyResponse](t, res.Data).Completed)

	w, res = e.do(t, http.MethodGet, "/api/stats/genres?top=1", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[genresResponse](t, res.Data).Entries, 1)
}

func TestChallenges(t *testing.T) {
	e := newEnv(t)

	w, res := e.do(t, http.MethodGet, "/api/challenges/2024", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(apperror.CodeNotFound), res.Error.Code)

	w, _ = e.do(t, http.MethodGet, "/api/challenges/next", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, res = e.do(t, http.MethodPost, "/api/challenges", "u1", map[string]any{"year": 2024, "goal": 10})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 10, decode[challengeResponse](t, res.Data).Goal)

	w, res = e.do(t, http.MethodPost, "/api/challenges", "u1", map[string]any{"year": 2024, "goal": 5})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(apperror.CodeConflict), res.Error.Code)

	w, res = e.do(t, http.MethodPut, "/api/challenges/2024", "u1", map[string]any{"goal": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, res.Error.Details, "goal")

	w, res = e.do(t, http.MethodPut, "/api/challenges/2024", "u1", map[string]any{"goal": 20})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, decode[challengeResponse](t, res.Data).Goal)

	w, res = e.do(t, http.MethodPost, "/api/challenges/2024/reconcile", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[challengeResponse](t, res.Data).Drifted)
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/health", NewHealthHandler(map[string]Check{
		"db":    func(context.Context) error { return nil },
		"cache": nil,
	}).Health)
	r.GET("/sick", NewHealthHandler(map[string]Check{
		"db": func(context.Context) error { return assert.AnError },
	}).Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"db":"up"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sick", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}
