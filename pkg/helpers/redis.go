package helpers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Session is the server-side record backing a pair of session tokens.
type Session struct {
	UserID    string
	Email     string
	Name      string
	SessionID string
}

// SessionStore keeps one session hash per user in Redis. The stored sid is
// rotated on refresh, so a stolen refresh token stops working after first use.
// A store without a client is disabled: writes are no-ops and tokens are trusted as issued.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func SessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (s *SessionStore) Enabled() bool { return s != nil && s.rdb != nil }

func (s *SessionStore) Save(ctx context.Context, sess Session) error {
	if !s.Enabled() {
		return nil
	}
	key := SessionKey(sess.UserID)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    sess.UserID,
		"email":      sess.Email,
		"name":       sess.Name,
		"sid":        sess.SessionID,
		"created_at": nowRFC3339(),
	})
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Get returns the user's session, or nil when none is stored.
func (s *SessionStore) Get(ctx context.Context, userID string) (*Session, error) {
	if !s.Enabled() {
		return nil, nil
	}
	data, err := s.rdb.HGetAll(ctx, SessionKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &Session{UserID: data["user_id"], Email: data["email"], Name: data["name"], SessionID: data["sid"]}, nil
}

// Rotate swaps the stored sid and extends the session's lifetime.
func (s *SessionStore) Rotate(ctx context.Context, userID, sid string) error {
	if !s.Enabled() {
		return nil
	}
	key := SessionKey(userID)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{"sid": sid, "updated_at": nowRFC3339()})
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Touch updates display fields without changing the session's TTL.
func (s *SessionStore) Touch(ctx context.Context, userID, name string) error {
	if !s.Enabled() {
		return nil
	}
	key := SessionKey(userID)
	if n, err := s.rdb.Exists(ctx, key).Result(); err != nil || n == 0 {
		return err
	}
	return s.rdb.HSet(ctx, key, map[string]any{"name": name, "updated_at": nowRFC3339()}).Err()
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Del(ctx, SessionKey(userID)).Err()
}
