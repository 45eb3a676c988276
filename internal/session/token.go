package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const (
	issuer     = "ubermelon"
	keyInfo    = "ubermelon session cookie v1"
	signingLen = 32
)

var ErrInvalidToken = errors.New("invalid session token")

// Signer issues and verifies the session cookie value. The HMAC key is
// derived from the configured secret, never the secret itself.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}

	key := make([]byte, signingLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}

	return &Signer{key: key, ttl: ttl, now: time.Now}, nil
}

func (s *Signer) TTL() time.Duration { return s.ttl }

func (s *Signer) Issue(sessionID string) (string, error) {
	now := s.now()

	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *Signer) Parse(tokenStr string) (string, error) {
	c, err := s.Verify(tokenStr)
	if err != nil {
		return "", err
	}
	return c.SessionID, nil
}

// Verify checks signature, issuer and expiry and returns the claims.
func (s *Signer) Verify(tokenStr string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if c.SessionID == "" {
		return Claims{}, ErrInvalidToken
	}

	return c, nil
}

// Stale reports whether a token has used up half its lifetime. Stale tokens
// are reissued so an active session never reaches its expiry.
func (s *Signer) Stale(c Claims) bool {
	if c.IssuedAt == nil {
		return true
	}
	return s.now().Sub(c.IssuedAt.Time) >= s.ttl/2
}
