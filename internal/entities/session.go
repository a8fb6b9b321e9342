package entities

import (
	"time"
)

// Session maps an opaque token to the username it authenticates.
// Tokens are minted on login and deleted on logout; a nil ExpiresAt
// means the session never expires.
type Session struct {
	Token     string     `gorm:"primaryKey;size:64" json:"-"`
	Username  string     `gorm:"index;size:100;not null" json:"username"`
	User      User       `gorm:"foreignKey:Username;references:Username" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}
