package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/equipment-tracker/internal/common"
	"github.com/joseph-ayodele/equipment-tracker/internal/export"
	"github.com/joseph-ayodele/equipment-tracker/internal/ingest"
	"github.com/joseph-ayodele/equipment-tracker/internal/pipeline"
	"github.com/joseph-ayodele/equipment-tracker/internal/runner"
)

const command = "build-db"

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		source   = flag.String("source", "", "source export directory (overrides CMES_SOURCE_DIR)")
		db       = flag.String("db", "", "snapshot directory (overrides CMES_DB_DIR)")
		orders   = flag.Bool("orders", false, "also parse the order workbook")
		noExport = flag.Bool("no-export", false, "skip CSV/XLSX exports")
		watch    = flag.Bool("watch", false, "rebuild whenever the source directory changes")
		debounce = flag.Duration("debounce", 2*time.Second, "quiet period before a watched rebuild")
		runs     = flag.Int("runs", 0, "print the newest N run ledger rows and exit")
		runID    = flag.String("run", "", "print one run ledger row and exit")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, cleanup, err := runner.Setup(ctx, runner.Options{Override: func(c *common.Config) {
		if *source != "" {
			c.Paths.SourceDir = *source
		}
		if *db != "" {
			c.Paths.DBDir = *db
		}
		if *orders {
			c.Build.EnableOrderParsing = true
		}
	}})
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(common.ExitCode(err))
	}

	if *runs > 0 || *runID != "" {
		err = env.ShowRuns(ctx, os.Stdout, *runID, *runs)
		if err != nil {
			printError("Error: %v\n", err)
		}
		cleanup()
		os.Exit(common.ExitCode(err))
	}

	cfg := env.Config
	var exporter *export.Service
	if !*noExport {
		exporter = export.NewService(cfg.Paths.ExportDir, env.Logger)
	}
	builder := pipeline.NewBuilder(
		env.Logger,
		ingest.NewFSIngestor(cfg.Paths.SourceDir, env.Logger),
		env.Snapshots,
		exporter,
		cfg.Build.EnableOrderParsing,
	)
	build := func(ctx context.Context) (map[string]any, error) {
		res, err := builder.Run(ctx)
		return res.Stats(), err
	}

	err = env.Track(ctx, command, build)
	if err == nil && *watch {
		err = watchAndRebuild(ctx, env, cfg.Paths.SourceDir, *debounce, build)
	}
	cleanup()
	os.Exit(common.ExitCode(err))
}

// watchAndRebuild rebuilds after every debounced batch of source changes
// until the context is cancelled. A failed rebuild is logged and the watch
// continues.
func watchAndRebuild(ctx context.Context, env *runner.Env, dir string, debounce time.Duration, build func(context.Context) (map[string]any, error)) error {
	batches, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    []string{dir},
		Debounce: debounce,
		Logger:   env.Logger,
	})
	if err != nil {
		return err
	}
	env.Logger.Info("build.watch.start", "dir", dir, "debounce", debounce.String())
	for {
		select {
		case <-ctx.Done():
			env.Logger.Info("build.watch.stop")
			return nil
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			env.Logger.Warn("build.watch.error", "error", err)
		case paths, ok := <-batches:
			if !ok {
				return nil
			}
			env.Logger.Info("build.watch.changed", "paths", len(paths))
			if err := env.Track(ctx, command, build); err != nil {
				env.Logger.Warn("build.watch.rebuild_failed", "error", err)
			}
		}
	}
}
