package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	user := &Usuario{ID: "U1", EscolaID: "S1", Email: "sec@escola.com"}

	token, err := GenerateAccessToken("test-secret", 15*time.Minute, user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAccessToken("test-secret", token)
	require.NoError(t, err)

	assert.Equal(t, "U1", claims.UserID)
	assert.Equal(t, "S1", claims.EscolaID)
	assert.Equal(t, "sec@escola.com", claims.Email)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	user := &Usuario{ID: "U1", EscolaID: "S1", Email: "sec@escola.com"}

	token, err := GenerateAccessToken("test-secret", 15*time.Minute, user)
	require.NoError(t, err)

	_, err = ValidateAccessToken("other-secret", token)
	assert.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	user := &Usuario{ID: "U1", EscolaID: "S1", Email: "sec@escola.com"}

	token, err := GenerateAccessToken("test-secret", -time.Minute, user)
	require.NoError(t, err)

	_, err = ValidateAccessToken("test-secret", token)
	assert.Error(t, err)
}

func TestGenerateRefreshTokenIsUnique(t *testing.T) {
	first, err := GenerateRefreshToken()
	require.NoError(t, err)

	second, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, first, 64)
}
