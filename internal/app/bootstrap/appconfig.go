// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// the framework-level settings (ports, TLS, logging, CORS); everything
// specific to orgdesk lives here and is passed to the lifecycle hooks.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens issued to organisations
	JWTSecret     string        // HMAC signing secret (must be strong in production)
	JWTExpiresIn  time.Duration // Token and cookie lifetime
	JWTCookieName string        // Cookie the token is also sent in

	// Sign-up throttling, per client IP
	SignupRateLimit  int
	SignupRateWindow time.Duration

	// Audit trail destinations per category: all, db, log or off
	AuditLogOrganisation string
	AuditLogSecurity     string
	AuditRetention       time.Duration // 0 keeps events forever
	AuditPruneInterval   time.Duration

	// Store call deadlines (see system/timeouts)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
