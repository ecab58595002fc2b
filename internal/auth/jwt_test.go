package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateJWT(42, secret)
	require.NoError(t, err)

	id, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestGenerateRejectsZeroUser(t *testing.T) {
	_, err := GenerateJWT(0, secret)
	assert.ErrorIs(t, err, ErrZeroUserID)
}

func TestEmptySecretIsRefused(t *testing.T) {
	_, err := GenerateJWT(7, nil)
	assert.ErrorIs(t, err, ErrEmptySecret)

	token, err := GenerateJWT(7, secret)
	require.NoError(t, err)
	_, err = ValidateToken(token, []byte(""))
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := GenerateJWT(7, secret)
	require.NoError(t, err)

	_, err = ValidateToken(token, []byte("other"))
	assert.Error(t, err)
}

func TestValidateExpired(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "7",
		Issuer:    Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = ValidateToken(token, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", secret)
	assert.Error(t, err)
}
