package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/equipment-tracker/constants"
	"github.com/joseph-ayodele/equipment-tracker/internal/common"
)

const runsSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	status      TEXT NOT NULL,
	error       TEXT,
	stats_json  TEXT
);
CREATE INDEX IF NOT EXISTS runs_started_at_idx ON runs (started_at);
`

var runColumns = []string{"id", "command", "started_at", "finished_at", "status", "error", "stats_json"}

// Run is one row of the run ledger.
type Run struct {
	ID         string         `db:"id"`
	Command    string         `db:"command"`
	StartedAt  string         `db:"started_at"`
	FinishedAt sql.NullString `db:"finished_at"`
	Status     string         `db:"status"`
	Error      sql.NullString `db:"error"`
	StatsJSON  sql.NullString `db:"stats_json"`
}

// RunRepository records every CLI invocation.
type RunRepository interface {
	Start(ctx context.Context, command string) (*Run, error)
	Finish(ctx context.Context, id string, runErr error, stats map[string]any) error
	Get(ctx context.Context, id string) (*Run, error)
	ListRecent(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

type runRepo struct {
	db     *sqlx.DB
	now    func() time.Time
	logger *slog.Logger
}

// OpenRunLedger opens (creating if needed) the SQLite run ledger at path.
func OpenRunLedger(ctx context.Context, path string, logger *slog.Logger) (RunRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, common.NewAppError("LEDGER_OPEN", "create ledger dir", errors.Join(common.ErrStorage, err))
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		logger.Error("ledger.open.failed", "path", path, "error", err)
		return nil, common.NewAppError("LEDGER_OPEN", "open "+path, errors.Join(common.ErrStorage, err))
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, runsSchema); err != nil {
		_ = db.Close()
		logger.Error("ledger.migrate.failed", "path", path, "error", err)
		return nil, common.NewAppError("LEDGER_OPEN", "migrate "+path, errors.Join(common.ErrStorage, err))
	}
	logger.Debug("ledger.open.ok", "path", path)
	return &runRepo{db: db, now: time.Now, logger: logger}, nil
}

func (r *runRepo) Start(ctx context.Context, command string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Command:   command,
		StartedAt: r.now().UTC().Format(time.RFC3339Nano),
		Status:    string(constants.RunStatusRunning),
	}

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("runs").Cols("id", "command", "started_at", "status")
	ib.Values(run.ID, run.Command, run.StartedAt, run.Status)
	query, args := ib.Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("ledger.start.failed", "command", command, "error", err)
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

func (r *runRepo) Finish(ctx context.Context, id string, runErr error, stats map[string]any) error {
	status := constants.RunStatusOK
	var errText sql.NullString
	if runErr != nil {
		status = constants.RunStatusFailed
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}

	var statsText sql.NullString
	if len(stats) > 0 {
		b, err := json.Marshal(stats)
		if err != nil {
			return fmt.Errorf("encode run stats: %w", err)
		}
		statsText = sql.NullString{String: string(b), Valid: true}
	}

	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("runs").Set(
		ub.Assign("finished_at", r.now().UTC().Format(time.RFC3339Nano)),
		ub.Assign("status", string(status)),
		ub.Assign("error", errText),
		ub.Assign("stats_json", statsText),
	).Where(ub.Equal("id", id))
	query, args := ub.Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("ledger.finish.failed", "run_id", id, "error", err)
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError("LEDGER_FINISH", "run "+id, common.ErrNotFound)
	}
	return nil
}

func (r *runRepo) Get(ctx context.Context, id string) (*Run, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(runColumns...).From("runs").Where(sb.Equal("id", id))
	query, args := sb.Build()

	var run Run
	if err := r.db.GetContext(ctx, &run, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewAppError("LEDGER_GET", "run "+id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

func (r *runRepo) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(runColumns...).From("runs").OrderBy("started_at").Desc().Limit(limit)
	query, args := sb.Build()

	var runs []Run
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (r *runRepo) Close() error {
	return r.db.Close()
}
