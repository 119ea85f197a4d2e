package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	access, aexp, err := m.GenerateAccessToken("user-1", "sid-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), aexp, 2*time.Second)

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.NotEmpty(t, claims.ID)

	refresh, _, err := m.GenerateRefreshToken("user-1", "sid-1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(refresh)
	assert.Error(t, err, "refresh tokens are signed with a different secret")

	claims, err = m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	tok, _, err := m.GenerateAccessToken("user-1", "sid")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	assert.Error(t, err)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)
	_, err := m.ParseAccessToken("not.a.token")
	assert.Error(t, err)
}
