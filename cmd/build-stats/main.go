package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joseph-ayodele/equipment-tracker/internal/common"
	"github.com/joseph-ayodele/equipment-tracker/internal/pipeline"
	"github.com/joseph-ayodele/equipment-tracker/internal/runner"
)

func main() {
	db := flag.String("db", "", "snapshot directory (overrides CMES_DB_DIR)")
	flag.Parse()

	ctx := context.Background()
	env, cleanup, err := runner.Setup(ctx, runner.Options{Override: func(c *common.Config) {
		if *db != "" {
			c.Paths.DBDir = *db
		}
	}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(common.ExitCode(err))
	}

	stats := pipeline.NewStatsBuilder(env.Logger, env.Snapshots)
	err = env.Track(ctx, "build-stats", func(ctx context.Context) (map[string]any, error) {
		doc, err := stats.Run(ctx)
		return map[string]any{
			"serials": len(doc.BySerial),
			"travel":  doc.Totals.TravelCount,
			"repair":  doc.Totals.RepairCount,
		}, err
	})
	cleanup()
	os.Exit(common.ExitCode(err))
}
