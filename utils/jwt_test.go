package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
)

func TestGenerateAndDecodeJWT(t *testing.T) {
	token, err := GenerateJWT("secret", "user_42", 1)
	assert.NoError(t, err)

	claims, err := DecodeJWT("secret", token)
	assert.NoError(t, err)
	assert.Equal(t, "user_42", claims["user_id"])
}

func TestDecodeJWT_WrongSecret(t *testing.T) {
	token, _ := GenerateJWT("secret", "user_42", 1)

	_, err := DecodeJWT("other", token)
	assert.Error(t, err)
}

func TestDecodeJWT_Expired(t *testing.T) {
	token, _ := GenerateJWT("secret", "user_42", -1)

	_, err := DecodeJWT("secret", token)
	assert.Error(t, err)
}

func TestDecodeJWT_EmptySecret(t *testing.T) {
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "victim_user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(""))
	assert.NoError(t, err)

	claims, err := DecodeJWT("", forged)

	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, ErrEmptySecret))
}

func TestGenerateJWT_EmptySecret(t *testing.T) {
	_, err := GenerateJWT("", "user_42", 1)

	assert.True(t, errors.Is(err, ErrEmptySecret))
}
