package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/equipment-tracker/constants"
	"github.com/joseph-ayodele/equipment-tracker/internal/common"
	"github.com/joseph-ayodele/equipment-tracker/internal/dates"
	"github.com/joseph-ayodele/equipment-tracker/internal/entity"
	"github.com/joseph-ayodele/equipment-tracker/internal/reconcile"
	"github.com/joseph-ayodele/equipment-tracker/internal/repository"
)

// MaxSampleMismatches caps the mismatches listed in a report.
const MaxSampleMismatches = 20

// Verify recomputes each equipment record's placement from its latest dated
// movement and reports where the stored snapshot disagrees.
func Verify(equipment []entity.Equipment, moves []entity.Movement) entity.VerifyReport {
	dated := make([]entity.Movement, 0, len(moves))
	for _, m := range moves {
		if m.Serial != "" && dates.Normalize(m.Date) != "" {
			dated = append(dated, m)
		}
	}
	latest := reconcile.LatestBySerial(dated)

	report := entity.VerifyReport{SampleMismatches: []entity.Mismatch{}}
	for _, e := range equipment {
		report.Total++
		last, ok := latest[e.Serial]
		if !ok {
			report.NoMove++
			continue
		}
		report.WithMove++

		p := constants.PlacementFor(last.InLocation)
		expected := entity.Placement{Status: string(p.Status), Loc: p.Location, Date: dates.Normalize(last.Date)}
		actual := entity.Placement{Status: string(e.Status), Loc: e.CurrentLocation, Date: prefix(e.LastMovement, 10)}
		if expected == actual {
			continue
		}
		report.Mismatches++
		if len(report.SampleMismatches) < MaxSampleMismatches {
			report.SampleMismatches = append(report.SampleMismatches, entity.Mismatch{
				Serial:   e.Serial,
				Expected: expected,
				Actual:   actual,
				LastIn:   last.InLocation,
				LastOut:  last.OutLocation,
			})
		}
	}
	return report
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Verifier loads the snapshots and runs Verify.
type Verifier struct {
	Logger    *slog.Logger
	Snapshots repository.SnapshotRepository
	Strict    bool
}

func NewVerifier(logger *slog.Logger, snapshots repository.SnapshotRepository, strict bool) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{Logger: logger, Snapshots: snapshots, Strict: strict}
}

// Run returns the report. In strict mode any mismatch is also an error.
func (v *Verifier) Run(ctx context.Context) (entity.VerifyReport, error) {
	equipment, err := repository.ReadSnapshot[entity.Equipment](v.Snapshots, constants.EquipmentDB)
	if err != nil {
		return entity.VerifyReport{}, err
	}
	moves, err := repository.ReadSnapshot[entity.Movement](v.Snapshots, constants.MovementsDB)
	if err != nil {
		return entity.VerifyReport{}, err
	}
	report := Verify(equipment, moves)
	v.Logger.Info("verify.done",
		"total", report.Total,
		"with_move", report.WithMove,
		"no_move", report.NoMove,
		"mismatches", report.Mismatches,
	)
	if v.Strict && report.Mismatches > 0 {
		return report, common.NewAppError("VERIFY_MISMATCH", fmt.Sprintf("%d equipment records disagree with movements", report.Mismatches), common.ErrValidation)
	}
	return report, nil
}
