// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/orgdesk/internal/app/store/audit"
	"github.com/dalemusser/orgdesk/internal/app/system/ratelimit"
	"github.com/dalemusser/orgdesk/internal/app/system/timeouts"
	"github.com/dalemusser/orgdesk/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Process-wide state built in Startup and released in Shutdown.
var (
	signupLimiter *ratelimit.Limiter
	stopSweeper   context.CancelFunc = func() {}
	auditPruner   *workers.AuditPrune
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: store
// deadlines are applied, the sign-up limiter is started and, when a
// retention period is set, the audit prune worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	signupLimiter = ratelimit.New(appCfg.SignupRateLimit, appCfg.SignupRateWindow)
	sweepCtx, cancel := context.WithCancel(context.Background())
	stopSweeper = cancel
	go signupLimiter.Run(sweepCtx, 0)

	if appCfg.AuditRetention > 0 {
		auditPruner = workers.NewAuditPrune(audit.New(deps.OrgDeskMongoDatabase), logger,
			appCfg.AuditPruneInterval, appCfg.AuditRetention)
		auditPruner.Start()
	}

	cur := timeouts.Current()
	logger.Info("orgdesk startup complete",
		zap.Duration("timeout_short", cur.Short),
		zap.Duration("timeout_medium", cur.Medium),
		zap.Duration("timeout_long", cur.Long),
		zap.Int("signup_rate_limit", appCfg.SignupRateLimit))
	return nil
}
