// Package users provides database operations for credential records.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.FindByUsername(username)
package users

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/mrlokans/authgate/internal/entities"
)

var (
	// ErrDuplicateUsername is returned when the username already exists.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new user record. Uniqueness is enforced by the
// database unique index on username, so concurrent creates for the same
// name resolve to exactly one success; the losers get ErrDuplicateUsername.
func (r *Repository) Create(username string, salt, derivedKey []byte, iterations int) (*entities.User, error) {
	user := &entities.User{
		Username:   username,
		Salt:       salt,
		DerivedKey: derivedKey,
		Iterations: iterations,
	}

	if err := r.db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	return user, nil
}

// FindByUsername retrieves a user by exact, case-sensitive username match.
func (r *Repository) FindByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Count returns the number of registered users.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

// isUniqueViolation reports whether err is a sqlite unique-constraint
// failure on insert.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
