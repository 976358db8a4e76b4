package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidSession = errors.New("invalid session token")

// SessionSigner issues and verifies the signed session cookie that maps a
// browser to its workspace.
type SessionSigner struct {
	secretKey []byte
	ttl       time.Duration
}

func NewSessionSigner(secretKey []byte, ttl time.Duration) *SessionSigner {
	return &SessionSigner{secretKey: secretKey, ttl: ttl}
}

// NewSession returns a fresh session id and its signed token.
func (s *SessionSigner) NewSession() (string, string, error) {
	sessionID := uuid.New().String()
	token, err := s.Sign(sessionID)
	if err != nil {
		return "", "", err
	}
	return sessionID, token, nil
}

func (s *SessionSigner) Sign(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Verify returns the session id carried by a valid, unexpired token.
func (s *SessionSigner) Verify(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !token.Valid || claims.ID == "" {
		return "", ErrInvalidSession
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return claims.ID, nil
}

func (s *SessionSigner) TTL() time.Duration { return s.ttl }
