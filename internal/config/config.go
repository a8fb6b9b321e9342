package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Global
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Auth struct {
		// PBKDF2Iterations is the PBKDF2-HMAC-SHA256 work factor used when
		// hashing new passwords. Existing users keep the iteration count
		// they were registered with.
		PBKDF2Iterations int

		// SessionTTL is the lifetime of issued sessions. Zero means
		// sessions never expire.
		SessionTTL time.Duration

		// SecureCookies marks the session cookie HTTPS-only. Set to false
		// for local dev without TLS.
		SecureCookies bool

		// SessionCleanupSchedule is a cron expression for purging expired
		// session rows. Only active when SessionTTL > 0.
		SessionCleanupSchedule string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8199)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_pbkdf2_iterations", DefaultPBKDF2Iterations)
	v.SetDefault("auth_session_ttl", "0")                      // Sessions do not expire
	v.SetDefault("auth_secure_cookies", true)                  // HTTPS-only cookies
	v.SetDefault("auth_session_cleanup_schedule", "0 * * * *") // Hourly at :00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Auth: Auth{
			PBKDF2Iterations:       v.GetInt("AUTH_PBKDF2_ITERATIONS"),
			SessionTTL:             v.GetDuration("AUTH_SESSION_TTL"),
			SecureCookies:          v.GetBool("AUTH_SECURE_COOKIES"),
			SessionCleanupSchedule: v.GetString("AUTH_SESSION_CLEANUP_SCHEDULE"),
		},
	}
}
