package config // package config loads application configuration from environment variables

import (
	"os" // os provides access to environment variables
	"time"

	log "github.com/sirupsen/logrus" // fatal reporting before the app logger exists
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database credentials are only required when the
// selected driver talks to a server (mysql, postgres); the sqlite3 driver
// only needs a file path.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	LogLevel      string        // logrus level name
	DBDriver      string        // mysql | postgres | sqlite3
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	DBPath        string        // sqlite3 database file
	DBSSLMode     string        // postgres sslmode
	AutoMigrate   bool          // apply embedded migrations at startup
	JWTSecret     string        // secret used to sign JWTs
	TokenTTLHours int           // token time-to-live in hours
	BcryptCost    int           // bcrypt cost for password hashing
	NotifyTimeout time.Duration // upper bound for a single notification send
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", "3000"),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		DBDriver:      envStr("DB_DRIVER", "mysql"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBPath:        envStr("DB_PATH", "jobboard.db"),
		DBSSLMode:     envStr("DB_SSLMODE", "disable"),
		AutoMigrate:   envBool("DB_AUTO_MIGRATE", true),
		JWTSecret:     must("JWT_SECRET"),
		TokenTTLHours: envInt("TOKEN_TTL_HOURS", 7*24),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		NotifyTimeout: envDur("NOTIFY_TIMEOUT", 10*time.Second),
	}
	switch cfg.DBDriver {
	case "mysql", "postgres":
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case "sqlite3":
	default:
		log.Fatalf("unsupported DB_DRIVER: %q", cfg.DBDriver)
	}
	if cfg.TokenTTLHours < 1 {
		log.Fatalf("invalid TOKEN_TTL_HOURS: %d", cfg.TokenTTLHours)
	}
	return cfg
}

// TokenTTL returns the configured token lifetime.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
