// Package runner holds the start-up sequence shared by the CLIs: config,
// logging, the snapshot store and the run ledger.
package runner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/equipment-tracker/internal/common"
	"github.com/joseph-ayodele/equipment-tracker/internal/repository"
)

// LedgerFile is the run ledger's file name inside the history directory.
const LedgerFile = "runs.db"

// Options controls Setup.
type Options struct {
	// ECount also validates the ERP config section.
	ECount bool
	// Override applies CLI flags on top of the loaded config.
	Override func(*common.Config)
	// LogWriter defaults to stdout.
	LogWriter io.Writer
}

// Env is everything a command needs after start-up.
type Env struct {
	Config    *common.Config
	Logger    *slog.Logger
	Snapshots repository.SnapshotRepository
	Ledger    repository.RunRepository
}

// Setup loads and validates config, installs the default logger and opens
// the run ledger. The returned cleanup must be called before exit.
func Setup(ctx context.Context, opts Options) (*Env, func(), error) {
	cfg, err := common.LoadConfig()
	if err != nil {
		return nil, func() {}, err
	}
	if opts.Override != nil {
		opts.Override(cfg)
	}
	cfg.FillDerived()
	if err := cfg.Validate(); err != nil {
		return nil, func() {}, err
	}
	if opts.ECount {
		if err := cfg.ValidateECount(); err != nil {
			return nil, func() {}, err
		}
	}

	w := opts.LogWriter
	if w == nil {
		w = os.Stdout
	}
	logger := common.NewLogger(w, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	env := &Env{
		Config:    cfg,
		Logger:    logger,
		Snapshots: repository.NewSnapshotRepository(cfg.Paths.DBDir, cfg.Paths.HistoryDir, logger),
	}

	ledger, err := repository.OpenRunLedger(ctx, filepath.Join(cfg.Paths.HistoryDir, LedgerFile), logger)
	if err != nil {
		// runs are still allowed without bookkeeping
		logger.Warn("runner.ledger.unavailable", "error", err)
		return env, func() {}, nil
	}
	env.Ledger = ledger
	cleanup := func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("runner.ledger.close_error", "error", err)
		}
	}
	return env, cleanup, nil
}

// Track runs job under a ledger entry for command and returns its error.
func (e *Env) Track(ctx context.Context, command string, job func(ctx context.Context) (map[string]any, error)) error {
	ctx = common.WithCommand(ctx, command)
	start := time.Now()

	var runID string
	if e.Ledger != nil {
		run, err := e.Ledger.Start(ctx, command)
		if err != nil {
			e.Logger.Warn("runner.ledger.start_error", "command", command, "error", err)
		} else {
			runID = run.ID
			ctx = common.WithRunID(ctx, runID)
		}
	}

	stats, jobErr := job(ctx)

	if runID != "" {
		if err := e.Ledger.Finish(context.WithoutCancel(ctx), runID, jobErr, stats); err != nil {
			e.Logger.Warn("runner.ledger.finish_error", "run_id", runID, "error", err)
		}
	}

	attrs := []any{"command", command, "run_id", runID, "elapsed_ms", time.Since(start).Milliseconds()}
	if jobErr != nil {
		e.Logger.Error("runner.run.failed", append(attrs, "error", jobErr, "exit_code", common.ExitCode(jobErr))...)
		return jobErr
	}
	e.Logger.Info("runner.run.ok", attrs...)
	return nil
}
