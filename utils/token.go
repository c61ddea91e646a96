package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	KindSession = "session"
	KindDevice  = "device"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims identify a browser session or device. The identifier is the JWT
// subject; the kind keeps one cookie from being replayed as the other.
type Claims struct {
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

type TokenSigner struct {
	secret []byte
	issuer string
}

func NewTokenSigner(secret, issuer string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), issuer: issuer}
}

// NewID returns a fresh random identifier for a session or device.
func NewID() string {
	return uuid.NewString()
}

// Generate signs id for the given kind. A zero ttl produces a token without
// an expiry, for cookies that end with the browser session.
func (s *TokenSigner) Generate(kind, id string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  id,
			Issuer:   s.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate checks the signature, expiry and kind, and returns the id.
func (s *TokenSigner) Validate(kind, tokenString string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Kind != kind || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
