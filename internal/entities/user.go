package entities

import (
	"time"
)

// User holds the stored credential material for a single account.
// Records are immutable after registration.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Salt       []byte    `gorm:"not null" json:"-"`
	DerivedKey []byte    `gorm:"not null" json:"-"`
	Iterations int       `gorm:"not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
