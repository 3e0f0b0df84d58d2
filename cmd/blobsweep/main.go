// Command blobsweep removes blobs in attachment storage (local or S3) that
// no attachment record references.
//
// It reads the same configuration as the server (config files,
// STRATAFOLDERS_* variables, flags). Pass --sweep_dry_run=true to list
// orphans without removing them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/stratafolders/internal/app/bootstrap"
	"github.com/dalemusser/stratafolders/internal/app/store/file"
	"github.com/dalemusser/stratafolders/internal/app/system/sweep"
	"github.com/dalemusser/stratafolders/internal/app/system/timeouts"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Error("blob sweep failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coreCfg, appCfg, err := bootstrap.LoadConfig(logger)
	if err != nil {
		return err
	}
	if err := bootstrap.ValidateConfig(coreCfg, appCfg, logger); err != nil {
		return err
	}
	timeouts.ConfigureFromEnv()

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, wafflemongo.DefaultPoolConfig())
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), timeouts.Ping())
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	store, err := bootstrap.NewFileStorage(ctx, appCfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Sweep(), logger, "blob sweep")
	defer cancel()

	sw := sweep.New(file.New(client.Database(appCfg.MongoDatabase)), logger)
	rep, err := sw.Run(ctx, store, sweep.Options{
		Grace:  appCfg.SweepGracePeriod,
		DryRun: appCfg.SweepDryRun,
	})
	if err != nil {
		return err
	}

	if appCfg.SweepDryRun {
		for _, name := range rep.Orphans {
			logger.Info("orphaned blob", zap.String("path", name))
		}
	}
	return nil
}
