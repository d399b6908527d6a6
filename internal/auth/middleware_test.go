package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylab/quarry/internal/policy"
)

func TestRequirePrincipal(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	mw := &Middleware{Tokens: issuer}

	var seen policy.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := policy.PrincipalFromContext(r.Context())
		require.True(t, ok)
		seen = p
		w.WriteHeader(http.StatusOK)
	})

	token, err := issuer.Issue(&User{ID: 7, Role: policy.RoleViewer})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	mw.RequirePrincipal(next).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, int64(7), seen.ID)
	assert.Equal(t, policy.RoleViewer, seen.Role)
}

func TestRequirePrincipalRejects(t *testing.T) {
	mw := &Middleware{Tokens: NewTokenIssuer("secret", time.Hour)}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	cases := map[string]string{
		"no header":    "",
		"wrong scheme": "Basic abc",
		"garbage":      "Bearer not-a-token",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		res := httptest.NewRecorder()
		mw.RequirePrincipal(next).ServeHTTP(res, req)
		assert.Equal(t, http.StatusUnauthorized, res.Code, name)
	}
}
