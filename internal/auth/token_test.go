package auth_test

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-desk/pqrs-service/internal/auth"
	"github.com/campus-desk/pqrs-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", 1)
	user := &domain.UserSummary{
		ID:          "teacher-1",
		DisplayName: "Marta Diaz",
		Role:        domain.RoleTeacher,
		Active:      true,
	}

	token, expiresAt, err := manager.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", claims.Subject)
	assert.Equal(t, "Marta Diaz", claims.DisplayName)
	assert.Equal(t, domain.RoleTeacher, claims.Role)
}

func TestTokenTTLDefault(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", 0)
	user := &domain.UserSummary{ID: "u", DisplayName: "U", Role: domain.RoleStudent}

	_, expiresAt, err := manager.GenerateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), expiresAt, time.Minute)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager("secret-a", 1)
	verifier := auth.NewTokenManager("secret-b", 1)
	user := &domain.UserSummary{ID: "u", DisplayName: "U", Role: domain.RoleStudent}

	token, _, err := issuer.GenerateToken(user)
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenWrongSigningMethod(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", 1)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = manager.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", 1)
	_, err := manager.ParseToken("not-a-token")
	assert.Error(t, err)
}
