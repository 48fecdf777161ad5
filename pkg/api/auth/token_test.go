package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestNewTokenServiceRejectsShortSecret(t *testing.T) {
	_, err := NewTokenService("short", "")
	assert.ErrorIs(t, err, ErrInvalidSecretLength)
}

func TestIssueAndValidate(t *testing.T) {
	svc, err := NewTokenService(secret, "")
	require.NoError(t, err)

	token, err := svc.Issue("ci", []string{ScopeWrite}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ci", claims.Subject)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
	assert.True(t, claims.HasScope(ScopeWrite))
	assert.True(t, claims.HasScope(ScopeRead))
	require.NotNil(t, claims.ExpiresAt)
}

func TestReadScopeDoesNotImplyWrite(t *testing.T) {
	c := &Claims{Scopes: []string{ScopeRead}}
	assert.True(t, c.HasScope(ScopeRead))
	assert.False(t, c.HasScope(ScopeWrite))
}

func TestValidateRejectsTampering(t *testing.T) {
	svc, err := NewTokenService(secret, "")
	require.NoError(t, err)
	token, err := svc.Issue("ci", []string{ScopeRead}, 0)
	require.NoError(t, err)

	other, err := NewTokenService(strings.Repeat("x", 32), "")
	require.NoError(t, err)
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer, err := NewTokenService(secret, "someone-else")
	require.NoError(t, err)
	_, err = wrongIssuer.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	svc, err := NewTokenService(secret, "")
	require.NoError(t, err)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	svc, err := NewTokenService(secret, "")
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestInspect(t *testing.T) {
	s, err := NewTokenService(secret, "")
	require.NoError(t, err)

	token, err := s.Issue("ci", []string{ScopeWrite}, time.Hour)
	require.NoError(t, err)

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "ci", claims.Subject)
	assert.Equal(t, []string{ScopeWrite}, claims.Scopes)
	require.NotNil(t, claims.ExpiresAt)

	_, err = Inspect("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
