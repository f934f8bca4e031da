package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Manager mints and verifies quote acceptance tokens. Tokens are HS256 JWTs
// bound to a single quote ID so a link for one quote cannot accept another.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// ErrInvalidToken is returned for malformed, expired or mismatched tokens
var ErrInvalidToken = errors.New("invalid token")

// NewManager creates a token manager. ttl of zero defaults to 24 hours.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Generate mints a signed token for the given quote ID
func (m *Manager) Generate(quoteID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   quoteID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature, expiry and quote binding
func (m *Manager) Verify(tokenString, quoteID string) error {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	if claims.Subject != quoteID {
		return ErrInvalidToken
	}
	return nil
}
