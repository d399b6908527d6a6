package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylab/quarry/internal/policy"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	raw, err := issuer.Issue(&User{ID: 42, Role: policy.RoleTester})
	require.NoError(t, err)

	principal, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), principal.ID)
	assert.Equal(t, policy.RoleTester, principal.Role)
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", -time.Minute)

	raw, err := issuer.Issue(&User{ID: 1, Role: policy.RoleAdmin})
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	require.Error(t, err)
}

func TestTokenWrongSecret(t *testing.T) {
	raw, err := NewTokenIssuer("secret-a", time.Hour).Issue(&User{ID: 1, Role: policy.RoleAdmin})
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Verify(raw)
	require.Error(t, err)
}

func TestTokenUnknownRoleRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	// A token minted with a bogus role must be stopped at verification so
	// the policy core never sees an invalid principal.
	raw, err := issuer.Issue(&User{ID: 1, Role: policy.Role("root")})
	require.NoError(t, err)

	_, err = issuer.Verify(raw)
	require.Error(t, err)
}
