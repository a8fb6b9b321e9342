// Package sessions provides database operations for session tokens.
//
// Tokens are opaque random identifiers validated against the store on
// every authenticated request. Expiry is enforced lazily at resolve
// time; PurgeExpired only reclaims storage for rows that are already
// unreachable.
package sessions

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/authgate/internal/entities"
)

// ErrSessionNotFound is returned when a token does not resolve to a
// live session, either because it was never issued, was revoked, or has
// expired.
var ErrSessionNotFound = errors.New("session not found")

// Repository handles all session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Issue mints a new random token for the user and persists it.
// A zero ttl issues a session without an expiry.
func (r *Repository) Issue(username string, ttl time.Duration) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &entities.Session{
		Token:    token,
		Username: username,
	}
	if ttl > 0 {
		expiresAt := time.Now().Add(ttl)
		session.ExpiresAt = &expiresAt
	}

	if err := r.db.Create(session).Error; err != nil {
		return "", err
	}

	return token, nil
}

// Resolve returns the username associated with the token. Expired and
// unknown tokens both yield ErrSessionNotFound. The read path never
// mutates state.
func (r *Repository) Resolve(token string) (string, error) {
	var session entities.Session
	err := r.db.Where("token = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSessionNotFound
		}
		return "", err
	}

	if session.Expired(time.Now()) {
		return "", ErrSessionNotFound
	}

	return session.Username, nil
}

// Revoke deletes the session record. Revoking a nonexistent or already
// revoked token is a no-op, not an error.
func (r *Repository) Revoke(token string) error {
	return r.db.Where("token = ?", token).Delete(&entities.Session{}).Error
}

// PurgeExpired deletes rows past their expiry and returns how many were
// removed. Sessions without an expiry are never touched.
func (r *Repository) PurgeExpired() (int64, error) {
	result := r.db.Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).
		Delete(&entities.Session{})
	return result.RowsAffected, result.Error
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
