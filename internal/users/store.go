// Package users stores accounts and verifies their passwords.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	db   *sql.DB
	cost int
}

// NewStore returns a Store hashing with the given bcrypt cost; a cost outside
// bcrypt's range falls back to bcrypt.DefaultCost.
func NewStore(db *sql.DB, cost int) *Store {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Store{db: db, cost: cost}
}

func normalize(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Register creates an account with the "user" role.
func (s *Store) Register(ctx context.Context, email, password string) (User, error) {
	return s.create(ctx, email, password, RoleUser)
}

func (s *Store) create(ctx context.Context, email, password, role string) (User, error) {
	email = normalize(email)
	if email == "" || password == "" {
		return User{}, fmt.Errorf("%w: email and password required", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, err
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email=$1`, email).Scan(&exists)
	switch {
	case err == nil:
		return User{}, ErrEmailTaken
	case !errors.Is(err, sql.ErrNoRows):
		return User{}, err
	}

	u := User{ID: uuid.NewString(), Email: email, Role: role, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Email, string(hash), u.Role, u.CreatedAt.Unix())
	if err != nil {
		// lost a race with a concurrent register of the same email
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

// Authenticate returns the user when the password matches. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, email, password string) (User, error) {
	var (
		u    User
		hash string
		ts   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password, role, created_at FROM users WHERE email=$1`, normalize(email)).
		Scan(&u.ID, &u.Email, &hash, &u.Role, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	u.CreatedAt = time.Unix(ts, 0).UTC()
	return u, nil
}

func (s *Store) Get(ctx context.Context, id string) (User, error) {
	var (
		u  User
		ts int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, role, created_at FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Email, &u.Role, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	u.CreatedAt = time.Unix(ts, 0).UTC()
	return u, nil
}

// ChangePassword replaces the password after checking the old one.
func (s *Store) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password required", ErrInvalidInput)
	}
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT password FROM users WHERE id=$1`, id).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE users SET password=$1 WHERE id=$2`, string(hash), id)
	return err
}

// EnsureAdmin creates the admin account if the email is not registered yet.
// An existing account is left as is. Empty credentials are a no-op.
func (s *Store) EnsureAdmin(ctx context.Context, email, password string) (created bool, err error) {
	if normalize(email) == "" || password == "" {
		return false, nil
	}
	if _, err := s.create(ctx, email, password, RoleAdmin); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
