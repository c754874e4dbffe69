package handler

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/cafefusion/backend/internal/domain/auth"
)

const bearerPrefix = "Bearer "

// authenticate resolves the bearer token into a Principal. Requests without
// a valid token are rejected with 401.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		p, err := h.tokens.Verify(strings.TrimSpace(header[len(bearerPrefix):]))
		if err != nil {
			zctx.From(r.Context()).Debug("Rejected token", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := auth.WithPrincipal(r.Context(), p)
		ctx = zctx.Base(ctx, zctx.From(ctx).With(zap.Int64("user_id", p.UserID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole rejects principals holding none of roles with 403.
func requireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !slices.Contains(roles, p.Role) {
				writeError(w, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFrom(r.Context())
	return p
}
