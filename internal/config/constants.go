package config

// Default paths and security parameters
const (
	// DefaultDatabasePath is the default path for the service database
	DefaultDatabasePath = "./authgate.db"

	// DefaultPBKDF2Iterations is the default PBKDF2-HMAC-SHA256 work factor
	DefaultPBKDF2Iterations = 120000
)
