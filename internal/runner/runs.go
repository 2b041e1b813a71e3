package runner

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/joseph-ayodele/equipment-tracker/internal/common"
	"github.com/joseph-ayodele/equipment-tracker/internal/repository"
)

// RunView is the printed form of a ledger row.
type RunView struct {
	ID         string          `json:"id"`
	Command    string          `json:"command"`
	StartedAt  string          `json:"startedAt"`
	FinishedAt string          `json:"finishedAt,omitempty"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Stats      json.RawMessage `json:"stats,omitempty"`
}

func viewOf(r repository.Run) RunView {
	v := RunView{
		ID:         r.ID,
		Command:    r.Command,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt.String,
		Status:     r.Status,
		Error:      r.Error.String,
	}
	if r.StatsJSON.Valid && json.Valid([]byte(r.StatsJSON.String)) {
		v.Stats = json.RawMessage(r.StatsJSON.String)
	}
	return v
}

// ShowRuns writes ledger rows to w, one JSON object per line. A non-empty id
// prints that run only; otherwise the newest limit runs are printed.
func (e *Env) ShowRuns(ctx context.Context, w io.Writer, id string, limit int) error {
	if e.Ledger == nil {
		return common.NewAppError("LEDGER_UNAVAILABLE", "run ledger is not open", common.ErrStorage)
	}

	var runs []repository.Run
	if id != "" {
		run, err := e.Ledger.Get(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.NewAppError("LEDGER_GET", "no run "+id, errors.Join(common.ErrInvalidInput, err))
			}
			return err
		}
		runs = append(runs, *run)
	} else {
		recent, err := e.Ledger.ListRecent(ctx, limit)
		if err != nil {
			return common.WrapError(err, "list runs")
		}
		runs = recent
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range runs {
		if err := enc.Encode(viewOf(r)); err != nil {
			return err
		}
	}
	e.Logger.Debug("runner.runs.listed", "count", len(runs))
	return nil
}
