package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	tokenString, err := GenerateAccessToken(42, "cashier_01")
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "cashier_01", claims.Username)
	assert.Equal(t, "resto-pos-backend", claims.Issuer)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsTamperedSignature(t *testing.T) {
	tokenString, err := GenerateAccessToken(1, "admin")
	assert.NoError(t, err)

	tampered := tokenString[:len(tokenString)-2] + "xx"
	_, err = ValidateToken(tampered)
	assert.Error(t, err)
}

func TestTokenTTLDefault(t *testing.T) {
	assert.Equal(t, DefaultTokenTTL, TokenTTL())
}
