package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner("secret", "canteen")
	id := NewID()

	token, err := signer.Generate(KindDevice, id, time.Hour)
	require.NoError(t, err)

	got, err := signer.Validate(KindDevice, token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenSigner_Rejects(t *testing.T) {
	signer := NewTokenSigner("secret", "canteen")

	session, err := signer.Generate(KindSession, "sid-1", 0)
	require.NoError(t, err)
	expired, err := signer.Generate(KindDevice, "did-1", -time.Minute)
	require.NoError(t, err)
	foreign, err := NewTokenSigner("other-secret", "canteen").Generate(KindDevice, "did-1", time.Hour)
	require.NoError(t, err)
	otherIssuer, err := NewTokenSigner("secret", "someone-else").Generate(KindDevice, "did-1", time.Hour)
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Kind: KindDevice}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		kind  string
		token string
	}{
		{"wrong_kind", KindDevice, session},
		{"expired", KindDevice, expired},
		{"wrong_secret", KindDevice, foreign},
		{"wrong_issuer", KindDevice, otherIssuer},
		{"none_algorithm", KindDevice, unsigned},
		{"garbage", KindSession, "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signer.Validate(tt.kind, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenSigner_SessionTokenHasNoExpiry(t *testing.T) {
	signer := NewTokenSigner("secret", "canteen")

	token, err := signer.Generate(KindSession, "sid-1", 0)
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.Equal(t, KindSession, claims.Kind)
}
