package auth

import (
	"testing"
	"time"

	"github.com/01moynul/mintverse-golang/internal/config"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer() *TokenIssuer {
	return NewTokenIssuer(config.AuthConfig{
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		VerifyTokenTTL: 10 * time.Minute,
	})
}

func TestSessionTokenRoundTrip(t *testing.T) {
	iss := newIssuer()

	tok, err := iss.GenerateToken(42, models.RoleAdmin)
	require.NoError(t, err)

	claims, err := iss.ValidateToken(tok)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestExpiredTokenRejected(t *testing.T) {
	iss := newIssuer()
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := iss.GenerateToken(1, models.RoleUser)
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	other := NewTokenIssuer(config.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour})
	tok, err := other.GenerateToken(1, models.RoleUser)
	require.NoError(t, err)

	_, err = newIssuer().ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNoneAlgorithmRejected(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Purpose: PurposeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newIssuer().ValidateToken(s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPurposesDoNotMix(t *testing.T) {
	iss := newIssuer()

	verify, err := iss.GenerateVerifyToken(7, "ada@example.com")
	require.NoError(t, err)
	_, err = iss.ValidateToken(verify)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	claims, err := iss.ValidateVerifyToken(verify)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)

	session, err := iss.GenerateToken(7, models.RoleUser)
	require.NoError(t, err)
	_, err = iss.ValidateVerifyToken(session)
	assert.ErrorIs(t, err, ErrWrongPurpose)
}
