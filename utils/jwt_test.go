package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-1", "ci", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ci", claims.Name)

	claims, err = ValidateJWT("Bearer "+token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestValidateJWTRejectsWrongSecretAndExpiry(t *testing.T) {
	token, err := GenerateJWT("user-1", "", "secret", time.Hour)
	require.NoError(t, err)
	_, err = ValidateJWT(token, "other")
	assert.Error(t, err)

	expired, err := GenerateJWT("user-1", "", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired, "secret")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader(""))
}
