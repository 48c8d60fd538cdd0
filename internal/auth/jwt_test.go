package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewJWTService("test-secret", "fintrack", time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken("user-1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "fintrack", claims.Issuer)
}

func TestBlankSecretIsRejected(t *testing.T) {
	_, err := NewJWTService("  ", "fintrack", time.Hour)
	require.Error(t, err)
}

func TestWrongSecretFailsValidation(t *testing.T) {
	issuer, err := NewJWTService("secret-a", "fintrack", time.Hour)
	require.NoError(t, err)
	verifier, err := NewJWTService("secret-b", "fintrack", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
}

func TestExpiredTokenFailsValidation(t *testing.T) {
	svc, err := NewJWTService("test-secret", "fintrack", time.Hour)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-2 * time.Hour)
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

func TestTokenWithoutUserIDIsRejected(t *testing.T) {
	svc, err := NewJWTService("test-secret", "fintrack", time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateToken("")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
