package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joseph-ayodele/equipment-tracker/internal/common"
	"github.com/joseph-ayodele/equipment-tracker/internal/ecount"
	"github.com/joseph-ayodele/equipment-tracker/internal/pipeline"
	"github.com/joseph-ayodele/equipment-tracker/internal/runner"
)

func main() {
	var (
		db       = flag.String("db", "", "snapshot directory (overrides CMES_DB_DIR)")
		disabled = flag.Bool("disabled", false, "write placeholder files without calling the ERP")
		noCache  = flag.Bool("no-cache", false, "bypass the response cache")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, cleanup, err := runner.Setup(ctx, runner.Options{
		ECount: true,
		Override: func(c *common.Config) {
			if *db != "" {
				c.Paths.DBDir = *db
			}
			if *disabled {
				c.ECount.Disabled = true
			}
			if *noCache {
				c.ECount.CacheTTL = 0
			}
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(common.ExitCode(err))
	}

	cfg := env.Config.ECount
	client := ecount.NewClient(ecount.OptionsFromConfig(cfg, env.Logger))
	syncer := pipeline.NewSyncer(env.Logger, client, env.Snapshots, cfg.Disabled, cfg.PageSize, cfg.MaxPages)

	err = env.Track(ctx, "ecount-sync", func(ctx context.Context) (map[string]any, error) {
		res, err := syncer.Run(ctx)
		return res.Stats(), err
	})
	cleanup()
	os.Exit(common.ExitCode(err))
}
