package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/quarrylab/quarry/internal/platform/httpx"
	"github.com/quarrylab/quarry/internal/policy"
)

// Middleware authenticates bearer tokens and injects the principal into the
// request context.
type Middleware struct {
	Tokens *TokenIssuer
	Logger *slog.Logger
}

// RequirePrincipal rejects requests without a valid bearer token.
func (m *Middleware) RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}

		principal, err := m.Tokens.Verify(raw)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("token rejected", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}

		ctx := policy.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
