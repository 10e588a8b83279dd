package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue("u12345", "john.doe@example.com", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u12345", claims.UserID)
	assert.Equal(t, "john.doe@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
}

func TestValidateCarriesAdminFlag(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue("u34567", "alice.johnson@example.com", true)
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a").Issue("u12345", "john.doe@example.com", false)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b").Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := issuer.Validate(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "%q must be rejected", raw)
	}
}

func TestValidateRejectsEmptyUserID(t *testing.T) {
	issuer := NewTokenIssuer("test-secret")

	token, err := issuer.Issue("", "john.doe@example.com", false)
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
