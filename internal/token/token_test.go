package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	tok, err := m.Generate("quote-123")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	assert.NoError(t, m.Verify(tok, "quote-123"))
}

func TestManager_WrongQuote(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	tok, err := m.Generate("quote-123")
	require.NoError(t, err)

	assert.ErrorIs(t, m.Verify(tok, "quote-456"), ErrInvalidToken)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	tok, err := m.Generate("quote-123")
	require.NoError(t, err)

	assert.ErrorIs(t, m.Verify(tok, "quote-123"), ErrInvalidToken)
}

func TestManager_TamperedSecret(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	tok, err := m.Generate("quote-123")
	require.NoError(t, err)

	assert.ErrorIs(t, other.Verify(tok, "quote-123"), ErrInvalidToken)
}

func TestManager_Garbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	assert.ErrorIs(t, m.Verify("not-a-token", "quote-123"), ErrInvalidToken)
	assert.ErrorIs(t, m.Verify("", "quote-123"), ErrInvalidToken)
}

func TestNewManager_DefaultTTL(t *testing.T) {
	m := NewManager("test-secret", 0)
	assert.Equal(t, 24*time.Hour, m.ttl)
}
