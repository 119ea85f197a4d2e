package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/noorfaiz5/Book-worm-hub/internal/domain/entity"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
	"github.com/noorfaiz5/Book-worm-hub/pkg/helpers"
	"github.com/noorfaiz5/Book-worm-hub/pkg/mailer"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]entity.User
}

func newMemUsers(users ...entity.User) *memUsers {
	m := &memUsers{byID: map[string]entity.User{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return apperror.Conflict("user already exists")
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("user not found")
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return apperror.NotFound("user not found")
	}
	m.byID[u.ID] = *u
	return nil
}

type memBooks struct {
	mu      sync.Mutex
	seq     int
	order   []string
	byID    map[string]entity.Book
	writes  int
	listErr error
}

func newMemBooks(books ...entity.Book) *memBooks {
	m := &memBooks{byID: map[string]entity.Book{}}
	for _, b := range books {
		if b.ID == "" {
			m.seq++
			b.ID = fmt.Sprintf("book-%d", m.seq)
		}
		m.order = append(m.order, b.ID)
		m.byID[b.ID] = b
	}
	return m
}

func (m *memBooks) ListByUser(_ context.Context, userID string) ([]entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []entity.Book{}
	for _, id := range m.order {
		if b, ok := m.byID[id]; ok && b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBooks) GetByID(_ context.Context, id string) (*entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("book not found")
	}
	return &b, nil
}

func (m *memBooks) Create(_ context.Context, b *entity.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	b.ID = fmt.Sprintf("book-%d", m.seq)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.order = append(m.order, b.ID)
	m.byID[b.ID] = *b
	m.writes++
	return nil
}

func (m *memBooks) Update(_ context.Context, b *entity.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[b.ID]; !ok {
		return apperror.NotFound("book not found")
	}
	b.UpdatedAt = time.Now()
	m.byID[b.ID] = *b
	m.writes++
	return nil
}

func (m *memBooks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return apperror.NotFound("book not found")
	}
	delete(m.byID, id)
	m.writes++
	return nil
}

func (m *memBooks) stored(id string) entity.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id]
}

type memChallenges struct {
	mu    sync.Mutex
	byKey map[string]entity.ReadingChallenge
}

func newMemChallenges(chs ...entity.ReadingChallenge) *memChallenges {
	m := &memChallenges{byKey: map[string]entity.ReadingChallenge{}}
	for _, ch := range chs {
		m.byKey[chKey(ch.UserID, ch.Year)] = ch
	}
	return m
}

func chKey(userID string, year int) string { return fmt.Sprintf("%s/%d", userID, year) }

func (m *memChallenges) GetByUserAndYear(_ context.Context, userID string, year int) (*entity.ReadingChallenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.byKey[chKey(userID, year)]
	if !ok {
		return nil, apperror.NotFound("reading challenge not found")
	}
	return &ch, nil
}

func (m *memChallenges) Create(_ context.Context, ch *entity.ReadingChallenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := chKey(ch.UserID, ch.Year)
	if _, ok := m.byKey[k]; ok {
		return apperror.Conflict("reading challenge already exists")
	}
	ch.ID = "ch-" + k
	ch.CreatedAt = time.Now()
	m.byKey[k] = *ch
	return nil
}

func (m *memChallenges) Update(_ context.Context, ch *entity.ReadingChallenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := chKey(ch.UserID, ch.Year)
	if _, ok := m.byKey[k]; !ok {
		return apperror.NotFound("reading challenge not found")
	}
	m.byKey[k] = *ch
	return nil
}

func (m *memChallenges) stored(userID string, year int) entity.ReadingChallenge {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byKey[chKey(userID, year)]
}

type fakePublisher struct {
	jobs []mailer.EmailJob
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body.(mailer.EmailJob))
	return nil
}

type fakeSearcher struct {
	indexed map[string]entity.Book
	removed []string
	hits    []string
	err     error
}

func newFakeSearcher() *fakeSearcher { return &fakeSearcher{indexed: map[string]entity.Book{}} }

func (f *fakeSearcher) Index(_ context.Context, b entity.Book) error {
	f.indexed[b.ID] = b
	return nil
}

func (f *fakeSearcher) Remove(_ context.Context, id string) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeSearcher) Search(context.Context, string, string, int) ([]string, error) {
	return f.hits, f.err
}

type fakeIdentity map[string]helpers.Identity

func (f fakeIdentity) Verify(_ context.Context, tok string) (*helpers.Identity, error) {
	id, ok := f[tok]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &id, nil
}

type fakeUploader struct {
	path, contentType string
	body              []byte
}

func (u *fakeUploader) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.path, u.contentType, u.body = objectPath, contentType, b
	return "https://cdn.test/" + objectPath, nil
}

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

func ptr[T any](v T) *T { return &v }

func at(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }
