// Copyright (c) 2025 The Delegard developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/delegard/delegard/board"
	"github.com/delegard/delegard/genesis"
	"github.com/delegard/delegard/kv"
	"github.com/delegard/delegard/log"
	"github.com/delegard/delegard/logdb"
	"github.com/delegard/delegard/lvldb"
	"github.com/delegard/delegard/metrics"
	"github.com/delegard/delegard/pebbledb"
	"github.com/delegard/delegard/runtime"
)

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".delegard")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func initLogger(ctx *cli.Context) *slog.LevelVar {
	logLevel := log.FromLegacyLevel(int(ctx.Uint64(verbosityFlag.Name)))
	output := io.Writer(os.Stdout)

	var level slog.LevelVar
	level.Set(logLevel)

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(output, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		if useColor {
			output = os.Stderr
		}
		handler = log.NewTerminalHandlerWithLevel(output, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	exitSignalCh := make(chan os.Signal, 1)
	signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

// openStore opens the ledger store of the selected engine. The data dir is
// empty for the memory engine.
func openStore(ctx *cli.Context) (kv.Store, string, error) {
	engine := ctx.String(dbEngineFlag.Name)
	if engine == "memory" {
		db, err := lvldb.NewMem()
		return db, "", err
	}
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return nil, "", err
	}
	cacheMB := ctx.Int(dbCacheFlag.Name)
	switch engine {
	case "leveldb":
		dir := filepath.Join(dataDir, "ledger.db")
		db, err := lvldb.New(dir, lvldb.Options{CacheSize: cacheMB, OpenFilesCacheCapacity: 500})
		if err != nil {
			return nil, "", errors.WithMessagef(err, "open ledger database [%v]", dir)
		}
		return db, dataDir, nil
	case "pebble":
		dir := filepath.Join(dataDir, "ledger.pebble")
		db, err := pebbledb.New(dir, pebbledb.Options{CacheSize: cacheMB})
		if err != nil {
			return nil, "", errors.WithMessagef(err, "open ledger database [%v]", dir)
		}
		return db, dataDir, nil
	}
	return nil, "", fmt.Errorf("unknown db engine %q", engine)
}

func openLogDB(ctx *cli.Context, dataDir string) (*logdb.LogDB, error) {
	if ctx.Bool(skipLogsFlag.Name) {
		return nil, nil
	}
	if dataDir == "" {
		return logdb.NewMem()
	}
	path := filepath.Join(dataDir, "logs.db")
	db, err := logdb.New(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "open log database [%v]", path)
	}
	return db, nil
}

// initGenesis applies the genesis to a fresh ledger; an initialized ledger
// is left as is.
func initGenesis(exitCtx context.Context, ctx *cli.Context, rt *runtime.Runtime, solo bool) error {
	round, err := rt.Round()
	if err != nil {
		return err
	}
	if round != 0 {
		logger.Info("ledger initialized", "round", round)
		return nil
	}

	var gen *genesis.Genesis
	switch path := ctx.String(genesisFlag.Name); {
	case path != "":
		if gen, err = genesis.Load(path); err != nil {
			return err
		}
	case solo:
		gen = genesis.Dev()
	default:
		return fmt.Errorf("fresh ledger needs a genesis, use -%s to specify", genesisFlag.Name)
	}
	res, err := gen.Apply(exitCtx, rt)
	if err != nil {
		return errors.WithMessage(err, "apply genesis")
	}
	for name, id := range res.Assets {
		logger.Info("genesis asset", "name", name, "id", id)
	}
	for _, id := range res.Platforms {
		logger.Info("genesis platform", "id", id, "address", board.AppAddress(id))
	}
	return nil
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (string, func(), error) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	if timeout := ctx.Uint64(apiTimeoutFlag.Name); timeout > 0 {
		handler = http.TimeoutHandler(handler, time.Duration(timeout)*time.Millisecond, "request timeout")
	}
	handler = http.MaxBytesHandler(handler, 200*1024)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	return "http://" + listener.Addr().String() + "/", serve(srv, listener, "API"), nil
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics addr [%v]", addr)
	}
	router := http.NewServeMux()
	router.Handle("/metrics", metrics.HTTPHandler())
	srv := &http.Server{Handler: router, ReadHeaderTimeout: time.Second}
	return "http://" + listener.Addr().String() + "/metrics", serve(srv, listener, "metrics"), nil
}

// serve runs srv on listener and returns the func stopping it.
func serve(srv *http.Server, listener net.Listener, name string) func() {
	var eg errgroup.Group
	eg.Go(func() error {
		return srv.Serve(listener)
	})
	return func() {
		srv.Close()
		if err := eg.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("server exited", "server", name, "err", err)
		}
	}
}

func printStartupMessage(solo bool, dataDir, apiURL string, round board.Round) {
	mode := "node"
	if solo {
		mode = "solo"
	}
	if dataDir == "" {
		dataDir = "(memory)"
	}
	fmt.Printf(`Starting %v
    Mode         [ %v ]
    Round        [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
`,
		fullVersion(),
		mode,
		round,
		dataDir,
		apiURL)
}
