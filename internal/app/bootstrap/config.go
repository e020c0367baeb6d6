// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/orgdesk/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devJWTSecret is refused outside dev.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for orgdesk.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: ORGDESK_MONGO_URI, ORGDESK_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "orgdesk", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "jwt_secret", Default: devJWTSecret, Desc: "Token signing secret (must be strong in production)"},
	{Name: "jwt_expires_in", Default: "2160h", Desc: "Token lifetime (e.g., 24h, 2160h)"},
	{Name: "jwt_cookie_name", Default: "jwt", Desc: "Cookie the token is sent in"},

	{Name: "signup_rate_limit", Default: 20, Desc: "Organisation sign-ups allowed per IP per window (0 disables)"},
	{Name: "signup_rate_window", Default: "1h", Desc: "Sign-up rate limit window"},

	{Name: "audit_log_organisation", Default: "all", Desc: "Audit organisation events to: all, db, log, off"},
	{Name: "audit_log_security", Default: "all", Desc: "Audit refused operations to: all, db, log, off"},
	{Name: "audit_retention", Default: "8760h", Desc: "How long audit events are kept (0 keeps them forever)"},
	{Name: "audit_prune_interval", Default: "1h", Desc: "How often expired audit events are deleted"},

	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for aggregations and lists"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for multi-collection transactions"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (WAFFLE_* for core, ORGDESK_* for app) and flags,
// with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ORGDESK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:     appValues.String("jwt_secret"),
		JWTExpiresIn:  appValues.Duration("jwt_expires_in", 90*24*time.Hour),
		JWTCookieName: appValues.String("jwt_cookie_name"),

		SignupRateLimit:  appValues.Int("signup_rate_limit"),
		SignupRateWindow: appValues.Duration("signup_rate_window", time.Hour),

		AuditLogOrganisation: appValues.String("audit_log_organisation"),
		AuditLogSecurity:     appValues.String("audit_log_security"),
		AuditRetention:       appValues.Duration("audit_retention", 365*24*time.Hour),
		AuditPruneInterval:   appValues.Duration("audit_prune_interval", time.Hour),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked before any connection attempt, and the
// development token secret is refused outside dev.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database must be set")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	if err := validateAuditModes(appCfg); err != nil {
		return err
	}
	return validateJWT(coreCfg.Env, appCfg)
}

func validateAuditModes(appCfg AppConfig) error {
	for key, mode := range map[string]string{
		"audit_log_organisation": appCfg.AuditLogOrganisation,
		"audit_log_security":     appCfg.AuditLogSecurity,
	} {
		switch mode {
		case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, mode)
		}
	}
	if appCfg.AuditRetention < 0 {
		return errors.New("audit_retention cannot be negative")
	}
	if appCfg.AuditRetention > 0 && appCfg.AuditPruneInterval <= 0 {
		return errors.New("audit_prune_interval must be positive when audit_retention is set")
	}
	return nil
}

func validateJWT(env string, appCfg AppConfig) error {
	if len(appCfg.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	if env != "dev" && appCfg.JWTSecret == devJWTSecret {
		return fmt.Errorf("jwt_secret must be changed from the development default in %q", env)
	}
	if appCfg.JWTExpiresIn <= 0 {
		return errors.New("jwt_expires_in must be positive")
	}
	return nil
}
