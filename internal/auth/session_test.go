package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour, false)

	token, err := m.Issue(SessionPayload{
		ID:    42,
		Email: "hong@example.com",
		Name:  "홍길동",
		Phone: "01012345678",
	})
	require.NoError(t, err)

	payload, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), payload.ID)
	assert.Equal(t, "hong@example.com", payload.Email)
	assert.Equal(t, "홍길동", payload.Name)
	assert.Equal(t, "01012345678", payload.Phone)
}

func TestSessionVerifyRejectsTampering(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour, false)

	token, err := m.Issue(SessionPayload{ID: 1, Email: "hong@example.com"})
	require.NoError(t, err)

	_, err = m.Verify(token + "x")
	assert.Error(t, err)

	_, err = m.Verify("")
	assert.Error(t, err)

	other := NewSessionManager("different-secret", time.Hour, false)
	_, err = other.Verify(token)
	assert.Error(t, err, "token signed under another secret must not verify")
}

func TestSessionVerifyRejectsExpired(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour, false)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Issue(SessionPayload{ID: 1, Email: "hong@example.com"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.Error(t, err)
}
