// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/delegard/delegard/api"
	"github.com/delegard/delegard/ledger"
	"github.com/delegard/delegard/log"
	"github.com/delegard/delegard/metrics"
	"github.com/delegard/delegard/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	flags := []cli.Flag{
		dataDirFlag,
		dbEngineFlag,
		dbCacheFlag,
		genesisFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiTimeoutFlag,
		apiLogsLimitFlag,
		apiSlowQueriesThresholdFlag,
		apiLog5xxErrorsFlag,
		enableAPILogsFlag,
		pprofFlag,
		skipLogsFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
	}
	app := cli.App{
		Version: fullVersion(),
		Name:    "Delegard",
		Usage:   "Node of the Delegard staking delegation marketplace",
		Flags:   flags,
		Action:  defaultAction,
		Commands: []cli.Command{
			{
				Name:   "solo",
				Usage:  "single node with locally advanced rounds, for test & dev",
				Flags:  append(flags, roundIntervalFlag),
				Action: soloAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	return run(ctx, false)
}

func soloAction(ctx *cli.Context) error {
	return run(ctx, true)
}

func run(ctx *cli.Context, solo bool) error {
	exitCtx := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	store, dataDir, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing ledger database..."); store.Close() }()

	logDB, err := openLogDB(ctx, dataDir)
	if err != nil {
		return err
	}
	if logDB != nil {
		defer func() { logger.Info("closing log database..."); logDB.Close() }()
	}

	l, err := ledger.New(store, ledger.Options{CacheSizeMB: ctx.Int(dbCacheFlag.Name) / 4})
	if err != nil {
		return err
	}
	rt := runtime.New(l, logDB)
	if err := initGenesis(exitCtx, ctx, rt, solo); err != nil {
		return err
	}

	var reqLogger atomic.Bool
	reqLogger.Store(ctx.Bool(enableAPILogsFlag.Name))
	handler := api.New(rt, logDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		SkipLogs:             ctx.Bool(skipLogsFlag.Name),
		EnableReqLogger:      &reqLogger,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		SoloMode:             solo,
		LogLevel:             logLevel,
	})

	apiURL, stopAPI, err := startAPIServer(ctx, handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	if ctx.Bool(enableMetricsFlag.Name) {
		url, stopMetrics, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); stopMetrics() }()
		logger.Info("metrics server started", "url", url)
	}

	round, err := rt.Round()
	if err != nil {
		return err
	}
	printStartupMessage(solo, dataDir, apiURL, round)

	group, groupCtx := errgroup.WithContext(exitCtx)
	if interval := ctx.Duration(roundIntervalFlag.Name); solo && interval > 0 {
		group.Go(func() error {
			return advanceRounds(groupCtx, rt, interval)
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		return nil
	})
	return group.Wait()
}

// advanceRounds moves the solo node one round forward per interval.
func advanceRounds(ctx context.Context, rt *runtime.Runtime, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			round, err := rt.AdvanceRound(ctx, 1)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			logger.Debug("round", "round", round)
		}
	}
}
