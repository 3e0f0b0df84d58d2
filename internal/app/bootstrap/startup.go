// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/stratafolders/internal/app/store/file"
	"github.com/dalemusser/stratafolders/internal/app/system/sweep"
	"github.com/dalemusser/stratafolders/internal/app/system/tasks"
	"github.com/dalemusser/stratafolders/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}
	cur := timeouts.Current()
	logger.Info("request timeouts",
		zap.Duration("ping", cur.Ping),
		zap.Duration("read", cur.Read),
		zap.Duration("write", cur.Write),
		zap.Duration("transfer", cur.Transfer),
		zap.Duration("sweep", cur.Sweep),
	)

	startTaskRunner(appCfg, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
// It stays nil when no background job is configured.
var taskRunner *tasks.Runner

// startTaskRunner schedules the orphan sweep when sweep_interval is set.
func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	if appCfg.SweepInterval <= 0 {
		return
	}
	runner := tasks.New(logger)
	sw := sweep.New(file.New(deps.MongoDatabase), logger)
	runner.Register(tasks.BlobSweepJob(sw, deps.FileStorage, sweep.Options{
		Grace: appCfg.SweepGracePeriod,
	}, appCfg.SweepInterval, logger))

	runner.Start()
	taskRunner = runner
}
