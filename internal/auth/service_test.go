package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/authgate/internal/config"
	"github.com/mrlokans/authgate/internal/database/sessions"
	"github.com/mrlokans/authgate/internal/database/users"
	"github.com/mrlokans/authgate/internal/entities"
)

// Low iteration count keeps the hashing fast in tests; the hasher
// raises it to its floor internally, which is fine for correctness.
const testIterations = MinIterations

func setupService(t *testing.T, cfg config.Auth) *Service {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "auth_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&entities.User{}, &entities.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	if cfg.PBKDF2Iterations == 0 {
		cfg.PBKDF2Iterations = testIterations
	}

	return NewService(users.NewRepository(db), sessions.NewRepository(db), cfg)
}

func TestService_Register(t *testing.T) {
	svc := setupService(t, config.Auth{})

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "valid credentials",
			username: "alice",
			password: "secret1",
			wantErr:  nil,
		},
		{
			name:     "empty username",
			username: "",
			password: "secret1",
			wantErr:  ErrUsernameRequired,
		},
		{
			name:     "whitespace-only username",
			username: "   ",
			password: "secret1",
			wantErr:  ErrUsernameRequired,
		},
		{
			name:     "password too short",
			username: "bob",
			password: "12345",
			wantErr:  ErrPasswordTooShort,
		},
		{
			name:     "password at minimum length",
			username: "carol",
			password: "123456",
			wantErr:  nil,
		},
		{
			name:     "duplicate username",
			username: "alice",
			password: "another-password",
			wantErr:  ErrDuplicateUsername,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Register(tt.username, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Register() unexpected error = %v", err)
				return
			}
			if user == nil {
				t.Fatal("Register() returned nil user")
			}
			if len(user.Salt) == 0 || len(user.DerivedKey) == 0 {
				t.Error("Register() persisted empty credential material")
			}
			if user.Iterations < MinIterations {
				t.Errorf("user.Iterations = %d, want >= %d", user.Iterations, MinIterations)
			}
		})
	}
}

func TestService_Register_RejectsBeforeStoreAccess(t *testing.T) {
	svc := setupService(t, config.Auth{})

	if _, err := svc.Register("dave", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("Register() error = %v, want %v", err, ErrPasswordTooShort)
	}

	// A failed validation must not leave a user behind.
	if _, _, err := svc.Login("dave", "short1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() after rejected register error = %v, want %v", err, ErrInvalidCredentials)
	}
}

func TestService_Register_TrimsUsername(t *testing.T) {
	svc := setupService(t, config.Auth{})

	if _, err := svc.Register("  alice  ", "secret1"); err != nil {
		t.Fatalf("Register() unexpected error = %v", err)
	}

	// The same trimmed name logs in, and the canonical spelling comes
	// back regardless of the padding in the request.
	_, user, err := svc.Login("  alice", "secret1")
	if err != nil {
		t.Fatalf("Login() with padded username error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("user.Username = %q, want %q", user.Username, "alice")
	}

	// And re-registering any spelling of it conflicts.
	if _, err := svc.Register("alice ", "secret2"); !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("Register() error = %v, want %v", err, ErrDuplicateUsername)
	}
}

func TestService_Login(t *testing.T) {
	svc := setupService(t, config.Auth{})

	if _, err := svc.Register("alice", "secret1"); err != nil {
		t.Fatalf("Register() unexpected error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "correct credentials",
			username: "alice",
			password: "secret1",
			wantErr:  nil,
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "wrongpass",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "unknown username",
			username: "mallory",
			password: "secret1",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "empty username",
			username: "",
			password: "secret1",
			wantErr:  ErrUsernameRequired,
		},
		{
			name:     "short password",
			username: "alice",
			password: "nope",
			wantErr:  ErrPasswordTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, user, err := svc.Login(tt.username, tt.password)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Login() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Login() unexpected error = %v", err)
				return
			}
			if token == "" {
				t.Error("Login() returned empty token")
			}
			if user == nil || user.Username != tt.username {
				t.Errorf("Login() user = %v, want username %q", user, tt.username)
			}
		})
	}
}

func TestService_Login_UniformError(t *testing.T) {
	svc := setupService(t, config.Auth{})

	if _, err := svc.Register("alice", "secret1"); err != nil {
		t.Fatalf("Register() unexpected error = %v", err)
	}

	_, _, unknownUserErr := svc.Login("mallory", "secret1")
	_, _, wrongPasswordErr := svc.Login("alice", "wrongpass")

	// Unknown user and wrong password must be indistinguishable.
	if !errors.Is(unknownUserErr, ErrInvalidCredentials) || !errors.Is(wrongPasswordErr, ErrInvalidCredentials) {
		t.Fatalf("errors = (%v, %v), both must be %v", unknownUserErr, wrongPasswordErr, ErrInvalidCredentials)
	}
	if unknownUserErr.Error() != wrongPasswordErr.Error() {
		t.Errorf("error messages differ: %q vs %q", unknownUserErr, wrongPasswordErr)
	}
}

func TestService_WhoAmI(t *testing.T) {
	svc := setupService(t, config.Auth{})

	if _, err := svc.Register("alice", "secret1"); err != nil {
		t.Fatalf("Register() unexpected error = %v", err)
	}
	token, _, err := svc.Login("alice", "secret1")
	if err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}

	user, err := svc.WhoAmI(token)
	if err != nil {
		t.Fatalf("WhoAmI() unexpected error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("user.Username = %q, want %q", user.Username, "alice")
	}

	if _, err := svc.WhoAmI("bogus-token"); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("WhoAmI(bogus) error = %v, want %v", err, ErrNotAuthenticated)
	}
	if _, err := svc.WhoAmI(""); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("WhoAmI(empty) error = %v, want %v", err, ErrNotAuthenticated)
	}
}

func TestService_Logout_Idempotent(t *testing.T) {
	svc := setupService(t, config.Auth{})

	if _, err := svc.Register("alice", "secret1"); err != nil {
		t.Fatalf("Register() unexpected error = %v", err)
	}
	token, _, err := svc.Login("alice", "secret1")
	if err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}

	if err := svc.Logout(token); err != nil {
		t.Fatalf("Logout() unexpected error = %v", err)
	}
	if _, err := svc.WhoAmI(token); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("WhoAmI() after logout error = %v, want %v", err, ErrNotAuthenticated)
	}

	// Second logout with the same token is a no-op.
	if err := svc.Logout(token); err != nil {
		t.Errorf("Logout() second call error = %v", err)
	}
	if err := svc.Logout("never-issued"); err != nil {
		t.Errorf("Logout() with bogus token error = %v", err)
	}
	if err := svc.Logout(""); err != nil {
		t.Errorf("Logout() with empty token error = %v", err)
	}
}

func TestService_MultipleSessionsPerUser(t *testing.T) {
	svc := setupService(t, config.Auth{})

	if _, err := svc.Register("alice", "secret1"); err != nil {
		t.Fatalf("Register() unexpected error = %v", err)
	}

	token1, _, err := svc.Login("alice", "secret1")
	if err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}
	token2, _, err := svc.Login("alice", "secret1")
	if err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}
	if token1 == token2 {
		t.Fatal("two logins returned the same token")
	}

	// Revoking one session leaves the other live.
	if err := svc.Logout(token1); err != nil {
		t.Fatalf("Logout() unexpected error = %v", err)
	}
	if _, err := svc.WhoAmI(token1); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("WhoAmI(token1) error = %v, want %v", err, ErrNotAuthenticated)
	}
	if user, err := svc.WhoAmI(token2); err != nil || user.Username != "alice" {
		t.Errorf("WhoAmI(token2) = (%v, %v), want alice", user, err)
	}
}

func TestService_SessionExpiry(t *testing.T) {
	svc := setupService(t, config.Auth{SessionTTL: time.Millisecond})

	if _, err := svc.Register("alice", "secret1"); err != nil {
		t.Fatalf("Register() unexpected error = %v", err)
	}
	token, _, err := svc.Login("alice", "secret1")
	if err != nil {
		t.Fatalf("Login() unexpected error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := svc.WhoAmI(token); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("WhoAmI() with expired token error = %v, want %v", err, ErrNotAuthenticated)
	}
}
