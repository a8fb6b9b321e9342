package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mrlokans/authgate/internal/config"
	"github.com/mrlokans/authgate/internal/database/sessions"
	"github.com/mrlokans/authgate/internal/database/users"
	"github.com/mrlokans/authgate/internal/entities"
)

// MinPasswordLength is the minimum required password length.
const MinPasswordLength = 6

var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// UserStore defines the user persistence the service depends on.
type UserStore interface {
	Create(username string, salt, derivedKey []byte, iterations int) (*entities.User, error)
	FindByUsername(username string) (*entities.User, error)
}

// SessionStore defines the session persistence the service depends on.
type SessionStore interface {
	Issue(username string, ttl time.Duration) (string, error)
	Resolve(token string) (string, error)
	Revoke(token string) error
}

// Service orchestrates registration, login, logout and session lookup.
type Service struct {
	users    UserStore
	sessions SessionStore
	config   config.Auth
}

// NewService creates a new authentication service.
func NewService(userStore UserStore, sessionStore SessionStore, cfg config.Auth) *Service {
	return &Service{
		users:    userStore,
		sessions: sessionStore,
		config:   cfg,
	}
}

// Register validates the credentials and creates a new user. Validation
// failures are reported before any store access, and registration never
// issues a session.
func (s *Service) Register(username, password string) (*entities.User, error) {
	username, err := validateCredentials(username, password)
	if err != nil {
		return nil, err
	}

	salt, derivedKey, iterations, err := HashPassword(password, s.config.PBKDF2Iterations)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(username, salt, derivedKey, iterations)
	if err != nil {
		if errors.Is(err, users.ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies the credentials and issues a session token, returning
// it with the stored user so callers see the canonical username.
// Unknown usernames and wrong passwords both fail with
// ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *Service) Login(username, password string) (string, *entities.User, error) {
	username, err := validateCredentials(username, password)
	if err != nil {
		return "", nil, err
	}

	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !VerifyPassword(password, user.Salt, user.DerivedKey, user.Iterations) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user.Username, s.config.SessionTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session: %w", err)
	}

	return token, user, nil
}

// Logout revokes the token. Bogus, expired and already-revoked tokens
// are ignored; logging out twice is not an error.
func (s *Service) Logout(token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Revoke(token)
}

// WhoAmI resolves the token to the user it authenticates. Missing,
// revoked and expired tokens all fail with ErrNotAuthenticated.
func (s *Service) WhoAmI(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	username, err := s.sessions.Resolve(token)
	if err != nil {
		if errors.Is(err, sessions.ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}

	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			// Session outlived its user; treat as unauthenticated.
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

// validateCredentials applies the request-independent checks shared by
// register and login: usernames are trimmed and non-empty, passwords at
// least MinPasswordLength characters.
func validateCredentials(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrUsernameRequired
	}
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	return username, nil
}
