// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/orgdesk/internal/app/features/health"
	organisationsfeature "github.com/dalemusser/orgdesk/internal/app/features/organisations"
	"github.com/dalemusser/orgdesk/internal/app/store/audit"
	"github.com/dalemusser/orgdesk/internal/app/system/apperr"
	"github.com/dalemusser/orgdesk/internal/app/system/auditlog"
	"github.com/dalemusser/orgdesk/internal/app/system/authtoken"
	"github.com/dalemusser/orgdesk/internal/app/system/jsonapi"
	"github.com/dalemusser/orgdesk/internal/app/system/metrics"
	"github.com/dalemusser/orgdesk/internal/app/system/ratelimit"
	"github.com/dalemusser/orgdesk/internal/app/system/reqlog"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Every request gets a request ID, an access-log
// line and HTTP metrics; a valid bearer token or jwt cookie is loaded into
// the request context before any feature router runs.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	tokens, err := authtoken.NewIssuer(appCfg.JWTSecret, appCfg.JWTExpiresIn, appCfg.JWTCookieName, secure)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}

	limiter := signupLimiter
	if limiter == nil {
		limiter = ratelimit.New(appCfg.SignupRateLimit, appCfg.SignupRateWindow)
	}

	r := chi.NewRouter()
	r.Use(reqlog.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(tokens.LoadToken)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonapi.WriteError(w, r, logger, apperr.NotFound("Can't find "+r.URL.Path+" on this server!"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonapi.WriteError(w, r, logger, apperr.New(http.StatusMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path))
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.OrgDeskMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", metrics.Handler())

	audits := auditlog.New(audit.New(deps.OrgDeskMongoDatabase), logger, auditlog.Config{
		Organisation: appCfg.AuditLogOrganisation,
		Security:     appCfg.AuditLogSecurity,
	})

	orgHandler := organisationsfeature.NewHandler(deps.OrgDeskMongoDatabase, tokens, audits, logger)
	r.Mount("/organisations", organisationsfeature.Routes(orgHandler, limiter))

	return r, nil
}
