package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	BaseURL        string // public base URL used when building email links
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBMaxConns     int    // database connection pool size
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	VerifyTTLDays  int    // email verification token time-to-live in days
	LoanDays       int    // number of days before a borrowed book is due
	BcryptCost     int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Durations and costs
// fall back to the documented defaults when unset.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),                                 // environment (dev/test/prod)
		Port:           must("APP_PORT"),                                // port to bind the HTTP server
		BaseURL:        envStr("APP_BASE_URL", "http://localhost:8000"), // base URL for email links
		DBUser:         must("DB_USER"),                                 // database user
		DBPass:         os.Getenv("DB_PASS"),                            // database password (empty allowed)
		DBHost:         must("DB_HOST"),                                 // database host
		DBPort:         must("DB_PORT"),                                 // database port
		DBName:         must("DB_NAME"),                                 // database name
		DBMaxConns:     envInt("DB_MAX_CONNS", 25),                      // connection pool size
		JWTSecret:      must("JWT_SECRET"),                              // secret used for signing JWTs
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 15),              // TTL for access tokens in minutes
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 2),             // TTL for refresh tokens in days
		VerifyTTLDays:  envInt("VERIFY_TOKEN_TTL_DAYS", 2),              // TTL for verification tokens in days
		LoanDays:       envInt("LOAN_DAYS", 7),                          // due date offset for borrowed books
		BcryptCost:     envInt("BCRYPT_COST", 10),                       // bcrypt cost factor
	}
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
