package auth

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/mind-engage/skillcheck/internal/api/envelope"
	"github.com/mind-engage/skillcheck/internal/rbac"
	"github.com/mind-engage/skillcheck/internal/users"
)

type UserLookup interface {
	Get(ctx context.Context, id string) (users.User, error)
}

// AttachRoleFromStore replaces the role carried by the token with the one
// stored for the subject, so role changes apply without a new login. A
// subject whose account is gone is rejected. Runs after JWTMiddleware.
func AttachRoleFromStore(lookup UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			u, err := lookup.Get(ctx, SubjectFromContext(ctx))
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, u.Role)))
			case errors.Is(err, users.ErrUserNotFound):
				envelope.Fail(w, http.StatusUnauthorized, envelope.KindUnauthorized, "account no longer exists")
			default:
				log.Printf("auth: role lookup: %v", err)
				envelope.Fail(w, http.StatusServiceUnavailable, envelope.KindStoreUnavailable, "try again later")
			}
		})
	}
}
