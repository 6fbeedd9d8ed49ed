package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marshallshelly/pebble-orm/pkg/builder"
	"golang.org/x/crypto/bcrypt"

	"blogicum/internal/models"
)

var (
	ErrEmailTaken    = errors.New("email already taken")
	ErrUsernameTaken = errors.New("username already taken")
	ErrInvalidLogin  = errors.New("invalid username or password")
	ErrNoSession     = errors.New("session not found")
)

// ----------------------------
// Context helpers (for middleware and handlers)
// ----------------------------

type ctxKeyUser struct{}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

func UserFrom(ctx context.Context) (*models.User, bool) {
	u, _ := ctx.Value(ctxKeyUser{}).(*models.User)
	return u, u != nil
}

// ----------------------------
// Register
// ----------------------------

func Register(ctx context.Context, qb *builder.DB, email, username, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if email == "" || username == "" || password == "" {
		return nil, errors.New("email, username and password are required")
	}
	if len(password) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}

	taken, err := builder.Select[models.User](qb).
		Where(builder.Eq("email", email)).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}
	taken, err = builder.Select[models.User](qb).
		Where(builder.Eq("username", username)).
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := builder.Insert[models.User](qb).
		Values(models.User{
			Email:        email,
			Username:     username,
			PasswordHash: string(hash),
		}).
		Returning("*").
		ExecReturning(ctx)
	if err != nil {
		// The unique indexes still win any race past the checks above.
		if isUniqueErr(err, "email") {
			return nil, ErrEmailTaken
		}
		if isUniqueErr(err, "username") {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("register: no row returned")
	}
	return &created[0], nil
}

// ----------------------------
// Login (creates a session with a UUID id and an expiry)
// ----------------------------

func Login(ctx context.Context, qb *builder.DB, username, password string, lifetime time.Duration) (string, *models.User, error) {
	username = strings.TrimSpace(username)

	users, err := builder.Select[models.User](qb).
		Where(builder.Eq("username", username)).
		Limit(1).
		All(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}
	if len(users) == 0 {
		return "", nil, ErrInvalidLogin
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidLogin
	}

	// One live session per user.
	if _, err := builder.Delete[models.Session](qb).
		Where(builder.Eq("user_id", user.ID)).
		Exec(ctx); err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	sid := uuid.New().String()
	if _, err := builder.Insert[models.Session](qb).
		Values(models.Session{
			ID:        sid,
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(lifetime),
		}).
		Exec(ctx); err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	return sid, &user, nil
}

// ----------------------------
// Logout (removes the session by id)
// ----------------------------

func Logout(ctx context.Context, qb *builder.DB, sid string) error {
	_, err := builder.Delete[models.Session](qb).
		Where(builder.Eq("id", sid)).
		Exec(ctx)
	return err
}

// ----------------------------
// UserFromSession: validates a cookie value and returns the user
// ----------------------------

func UserFromSession(ctx context.Context, qb *builder.DB, sid string) (*models.User, error) {
	sessions, err := builder.Select[models.Session](qb).
		Where(builder.Eq("id", sid)).
		Limit(1).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if len(sessions) == 0 || sessions[0].ExpiresAt.Before(time.Now()) {
		return nil, ErrNoSession
	}

	users, err := builder.Select[models.User](qb).
		Where(builder.Eq("id", sessions[0].UserID)).
		Limit(1).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("session user: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNoSession
	}
	return &users[0], nil
}

// ----------------------------
// UpdateProfile: the logged-in user edits their own record
// ----------------------------

func UpdateProfile(ctx context.Context, qb *builder.DB, userID int64, firstName, lastName, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return errors.New("email is required")
	}

	_, err := builder.Update[models.User](qb).
		Set("first_name", strings.TrimSpace(firstName)).
		Set("last_name", strings.TrimSpace(lastName)).
		Set("email", email).
		Where(builder.Eq("id", userID)).
		Exec(ctx)
	if err != nil {
		if isUniqueErr(err, "email") {
			return ErrEmailTaken
		}
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func isUniqueErr(err error, col string) bool {
	// Postgres: `duplicate key value violates unique constraint "users_email_key"`
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") && strings.Contains(msg, col)
}
