package http

import (
	"context"
	"net/http"

	"github.com/mind-engage/skillcheck/internal/api/envelope"
	auth "github.com/mind-engage/skillcheck/internal/auth/middleware"
	"github.com/mind-engage/skillcheck/internal/users"
)

type UserStore interface {
	Register(ctx context.Context, email, password string) (users.User, error)
	Authenticate(ctx context.Context, email, password string) (users.User, error)
	Get(ctx context.Context, id string) (users.User, error)
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /auth/register {"email": "...", "password": "..."}
// New accounts always get the "user" role.
func RegisterHandler(us UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in credentials
		if !decodeJSON(w, r, &in) {
			return
		}
		u, err := us.Register(r.Context(), in.Email, in.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusCreated, u)
	}
}

// POST /auth/login sets the session cookies and also returns the access
// token for bearer clients.
func LoginHandler(a *auth.AuthService, us UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in credentials
		if !decodeJSON(w, r, &in) {
			return
		}
		u, err := us.Authenticate(r.Context(), in.Email, in.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		tok, err := a.StartSession(w, u.ID, u.Email, u.Role)
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, map[string]any{"access_token": tok, "user": u})
	}
}

// GET /auth/logout
func LogoutHandler(a *auth.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.EndSession(w)
		envelope.OK(w, http.StatusOK, nil)
	}
}

// GET /auth/me
func MeHandler(us UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := us.Get(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, u)
	}
}

// PUT /auth/password {"old_password": "...", "new_password": "..."}
func ChangePasswordHandler(us UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			OldPassword string `json:"old_password"`
			NewPassword string `json:"new_password"`
		}
		if !decodeJSON(w, r, &in) {
			return
		}
		if err := us.ChangePassword(r.Context(), auth.SubjectFromContext(r.Context()), in.OldPassword, in.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		envelope.OK(w, http.StatusOK, nil)
	}
}
