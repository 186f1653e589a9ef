package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/correspondence-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)

	tokenStr, expiresAt, err := tm.GenerateToken(42, domain.RoleManager)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	claims, err := tm.ParseToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, domain.RoleManager, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 15)
	verifier := NewTokenManager("secret-b", 15)

	tokenStr, _, err := issuer.GenerateToken(1, domain.RoleStaff)
	require.NoError(t, err)

	_, err = verifier.ParseToken(tokenStr)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	_, err := tm.ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestRoleCanMutate(t *testing.T) {
	assert.True(t, domain.RoleAdmin.CanMutate())
	assert.True(t, domain.RoleManager.CanMutate())
	assert.False(t, domain.RoleStaff.CanMutate())
	assert.False(t, domain.Role("guest").CanMutate())
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.NoError(t, ComparePassword(hash, "s3cret-pass"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func TestHashPasswordClampsInvalidCost(t *testing.T) {
	hash, err := HashPassword("pw", -1)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "pw"))

	hash, err = HashPassword("pw", 99)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "pw"))
}
