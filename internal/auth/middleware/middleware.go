package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mind-engage/skillcheck/internal/api/envelope"
	"github.com/mind-engage/skillcheck/internal/rbac"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	issuer = "skillcheck"
)

type Options struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	CookieSecure  bool
}

// AuthService issues and verifies session tokens. Access and refresh tokens
// are signed with different secrets.
type AuthService struct {
	access, refresh       []byte
	accessTTL, refreshTTL time.Duration
	secure                bool
	now                   func() time.Time
}

func NewAuthService(o Options) *AuthService {
	if o.AccessTTL <= 0 {
		o.AccessTTL = 30 * time.Minute
	}
	if o.RefreshTTL <= 0 {
		o.RefreshTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		access:     []byte(o.AccessSecret),
		refresh:    []byte(o.RefreshSecret),
		accessTTL:  o.AccessTTL,
		refreshTTL: o.RefreshTTL,
		secure:     o.CookieSecure,
		now:        time.Now,
	}
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (a *AuthService) sign(key []byte, ttl time.Duration, sub, email, role string) (string, error) {
	now := a.now()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func (a *AuthService) IssueAccess(sub, email, role string) (string, error) {
	return a.sign(a.access, a.accessTTL, sub, email, role)
}

func (a *AuthService) IssueRefresh(sub, email, role string) (string, error) {
	return a.sign(a.refresh, a.refreshTTL, sub, email, role)
}

func (a *AuthService) parse(key []byte, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return c, nil
}

func (a *AuthService) ParseAccess(tokenStr string) (*Claims, error) { return a.parse(a.access, tokenStr) }

func (a *AuthService) ParseRefresh(tokenStr string) (*Claims, error) {
	return a.parse(a.refresh, tokenStr)
}

func (a *AuthService) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// StartSession sets both session cookies and returns the access token for
// bearer clients.
func (a *AuthService) StartSession(w http.ResponseWriter, sub, email, role string) (string, error) {
	access, err := a.IssueAccess(sub, email, role)
	if err != nil {
		return "", err
	}
	refresh, err := a.IssueRefresh(sub, email, role)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, a.cookie(AccessCookie, access, a.accessTTL))
	http.SetCookie(w, a.cookie(RefreshCookie, refresh, a.refreshTTL))
	return access, nil
}

func (a *AuthService) EndSession(w http.ResponseWriter) {
	http.SetCookie(w, a.cookie(AccessCookie, "", -time.Second))
	http.SetCookie(w, a.cookie(RefreshCookie, "", -time.Second))
}

func accessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(AccessCookie); err == nil {
		return c.Value
	}
	return ""
}

// authenticate resolves the caller's claims. A missing or expired access
// token is replaced from a valid refresh cookie and the new access cookie is
// written to w.
func (a *AuthService) authenticate(w http.ResponseWriter, r *http.Request) (*Claims, error) {
	tok := accessToken(r)
	if tok != "" {
		c, err := a.ParseAccess(tok)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			return nil, err
		}
	}

	rc, err := r.Cookie(RefreshCookie)
	if err != nil {
		return nil, errors.New("no session")
	}
	c, err := a.ParseRefresh(rc.Value)
	if err != nil {
		a.EndSession(w)
		return nil, err
	}
	fresh, err := a.IssueAccess(c.Subject, c.Email, c.Role)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, a.cookie(AccessCookie, fresh, a.accessTTL))
	return c, nil
}

// JWTMiddleware rejects requests without a valid session and puts the
// subject, email and role into the request context.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := a.authenticate(w, r)
			if err != nil {
				envelope.Fail(w, http.StatusUnauthorized, envelope.KindUnauthorized, "unauthorized")
				return
			}
			ctx := WithSubject(r.Context(), c.Subject)
			ctx = WithEmail(ctx, c.Email)
			ctx = rbac.WithRole(ctx, c.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
