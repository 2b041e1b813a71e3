package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joseph-ayodele/equipment-tracker/internal/common"
	"github.com/joseph-ayodele/equipment-tracker/internal/pipeline"
	"github.com/joseph-ayodele/equipment-tracker/internal/runner"
)

func main() {
	var (
		db     = flag.String("db", "", "snapshot directory (overrides CMES_DB_DIR)")
		strict = flag.Bool("strict", false, "exit non-zero when any record disagrees with its movements")
	)
	flag.Parse()

	ctx := context.Background()
	// logs go to stderr so the report is the only thing on stdout
	env, cleanup, err := runner.Setup(ctx, runner.Options{
		LogWriter: os.Stderr,
		Override: func(c *common.Config) {
			if *db != "" {
				c.Paths.DBDir = *db
			}
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(common.ExitCode(err))
	}

	verifier := pipeline.NewVerifier(env.Logger, env.Snapshots, *strict)
	err = env.Track(ctx, "verify-equipment", func(ctx context.Context) (map[string]any, error) {
		report, err := verifier.Run(ctx)
		out, encErr := json.MarshalIndent(report, "", "  ")
		if encErr == nil {
			fmt.Println(string(out))
		}
		return map[string]any{
			"total":      report.Total,
			"with_move":  report.WithMove,
			"no_move":    report.NoMove,
			"mismatches": report.Mismatches,
		}, err
	})
	cleanup()
	os.Exit(common.ExitCode(err))
}
