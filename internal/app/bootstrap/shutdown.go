// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work and cleanly tears down DB connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	stopSweeper()
	if auditPruner != nil {
		auditPruner.Stop()
		auditPruner = nil
	}

	if deps.OrgDeskMongoClient != nil {
		logger.Info("disconnecting orgdesk MongoDB client")
		if err := deps.OrgDeskMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
