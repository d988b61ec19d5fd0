package handler

import (
	"context"
	"net/http"

	"skillswap/backend/internal/models"
	"skillswap/backend/internal/service"
	"skillswap/backend/pkg/auth"
)

type contextKey string

const userContextKey contextKey = "current_user"

// WithUser resolves the authenticated identity into a SkillSwap account and
// puts it on the request context. First contact creates the account, so the
// signup bonus and welcome message happen here as a side effect.
func WithUser(users service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				writeJSON(w, http.StatusUnauthorized, envelope{
					Error: &apiError{Code: "unauthorized", Message: "missing identity"},
				})
				return
			}

			user, err := users.SyncFromIdentity(r.Context(), identity)
			if err != nil {
				respondError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}
