package helpers

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the identity provider asserts about a signed-in user.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier checks a provider-issued ID token.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

var ErrInvalidIDToken = errors.New("invalid id token")

type idClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

func (c *idClaims) identity() (*Identity, error) {
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidIDToken)
	}
	if c.Email == "" {
		return nil, fmt.Errorf("%w: missing email", ErrInvalidIDToken)
	}
	return &Identity{Subject: c.Subject, Email: strings.ToLower(c.Email), Name: c.Name, Picture: c.Picture}, nil
}

func parserOptions(issuer, audience string, methods ...string) []jwt.ParserOption {
	opts := []jwt.ParserOption{jwt.WithValidMethods(methods), jwt.WithExpirationRequired(), jwt.WithLeeway(30 * time.Second)}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return opts
}

// CertVerifier verifies RS256 ID tokens against the provider's published
// certificate set: a JSON object mapping key id to a PEM certificate.
// The set is fetched at most once per MinRefresh, so unknown kids cannot
// drive one outbound request per token.
type CertVerifier struct {
	Issuer     string
	Audience   string
	CertsURL   string
	TTL        time.Duration
	MinRefresh time.Duration
	Client     *http.Client

	refreshMu sync.Mutex

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expires   time.Time
	attempted time.Time
	lastErr   error
}

func NewCertVerifier(issuer, audience, certsURL string, ttl time.Duration) *CertVerifier {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CertVerifier{
		Issuer:     issuer,
		Audience:   audience,
		CertsURL:   certsURL,
		TTL:        ttl,
		MinRefresh: time.Minute,
		Client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (v *CertVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	claims := &idClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}
		return v.key(ctx, kid)
	}, parserOptions(v.Issuer, v.Audience, jwt.SigningMethodRS256.Alg())...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	return claims.identity()
}

// key returns the public key for kid, refreshing the certificate set when it
// is stale or does not know kid and no fetch was attempted within MinRefresh.
func (v *CertVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if k, done, err := v.lookup(kid); done {
		return k, err
	}

	v.refreshMu.Lock()
	defer v.refreshMu.Unlock()
	if k, done, err := v.lookup(kid); done {
		return k, err
	}
	if err := v.refresh(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if k, ok := v.keys[kid]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("unknown kid %q", kid)
}

// lookup answers from the cache. done is false when a refresh is due.
func (v *CertVerifier) lookup(kid string) (*rsa.PublicKey, bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	k, ok := v.keys[kid]
	now := time.Now()
	if ok && now.Before(v.expires) {
		return k, true, nil
	}
	if now.Sub(v.attempted) >= v.MinRefresh {
		return nil, false, nil
	}
	switch {
	case ok:
		// stale, but refreshed too recently to fetch again
		return k, true, nil
	case v.lastErr != nil:
		return nil, true, v.lastErr
	default:
		return nil, true, fmt.Errorf("unknown kid %q", kid)
	}
}

func (v *CertVerifier) refresh(ctx context.Context) error {
	keys, ttl, err := v.fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.attempted = time.Now()
	v.lastErr = err
	if err != nil {
		return err
	}
	v.keys = keys
	v.expires = v.attempted.Add(ttl)
	return nil
}

func (v *CertVerifier) fetch(ctx context.Context) (map[string]*rsa.PublicKey, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.CertsURL, nil)
	if err != nil {
		return nil, 0, err
	}
	res, err := v.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch certs: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("fetch certs: status %d", res.StatusCode)
	}

	var raw map[string]string
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("decode certs: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(raw))
	for kid, pem := range raw {
		k, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, 0, fmt.Errorf("parse cert %q: %w", kid, err)
		}
		keys[kid] = k
	}

	ttl := v.TTL
	if maxAge, ok := cacheMaxAge(res.Header.Get("Cache-Control")); ok {
		ttl = maxAge
	}

	return keys, ttl, nil
}

func cacheMaxAge(header string) (time.Duration, bool) {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, "max-age="); ok {
			secs, err := strconv.Atoi(v)
			if err != nil || secs <= 0 {
				return 0, false
			}
			return time.Duration(secs) * time.Second, true
		}
	}
	return 0, false
}

// SecretVerifier accepts HS256 ID tokens signed with a shared secret.
// Intended for local development and tests.
type SecretVerifier struct {
	Issuer   string
	Audience string
	Secret   []byte
}

func NewSecretVerifier(issuer, audience, secret string) *SecretVerifier {
	return &SecretVerifier{Issuer: issuer, Audience: audience, Secret: []byte(secret)}
}

func (v *SecretVerifier) Verify(_ context.Context, idToken string) (*Identity, error) {
	claims := &idClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(*jwt.Token) (interface{}, error) {
		return v.Secret, nil
	}, parserOptions(v.Issuer, v.Audience, jwt.SigningMethodHS256.Alg())...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	return claims.identity()
}

// SignDevIDToken issues an HS256 ID token accepted by a SecretVerifier with the same settings.
func SignDevIDToken(secret, issuer, audience string, id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &idClaims{
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
