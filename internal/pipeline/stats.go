package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/joseph-ayodele/equipment-tracker/constants"
	"github.com/joseph-ayodele/equipment-tracker/internal/dates"
	"github.com/joseph-ayodele/equipment-tracker/internal/entity"
	"github.com/joseph-ayodele/equipment-tracker/internal/repository"
)

var pairingRules = entity.StatsRules{
	TravelPair: "청명→현장 후 현장→청명 = 출장 1회",
	RepairPair: "청명→업체 후 업체→청명 = 수리 1회",
	Notes:      "페어가 완결될 때만 카운트. 중간 경로가 다른 경우 미완결로 간주",
}

// trip tracks one open/close pairing rule for a single serial.
type trip struct {
	out, in constants.LocationKind
	open     bool
	count    int
}

// step opens the trip on out→in and closes it on the reverse move.
func (t *trip) step(from, to constants.LocationKind) {
	switch {
	case from == constants.LocationHeadquarters && to == t.in:
		t.open = true
	case t.open && from == t.in && to == constants.LocationHeadquarters:
		t.count++
		t.open = false
	}
}

// SerialTrips counts completed field trips and repair cycles in the moves
// of one serial, which must already be in date order.
func SerialTrips(moves []entity.Movement) entity.SerialStats {
	travel := trip{in: constants.LocationField}
	repair := trip{in: constants.LocationVendor}
	var last string
	for _, m := range moves {
		if d := dates.Normalize(m.Date); d != "" {
			last = d
		}
		from := constants.ClassifyLocation(m.OutLocation)
		to := constants.ClassifyLocation(m.InLocation)
		travel.step(from, to)
		repair.step(from, to)
	}
	return entity.SerialStats{TravelCount: travel.count, RepairCount: repair.count, LastDate: last}
}

// Overview builds the stats document from the movement snapshot.
func Overview(moves []entity.Movement, sourceFile string, now time.Time) entity.StatsOverview {
	bySerial := map[string][]entity.Movement{}
	var order []string
	for _, m := range moves {
		serial := strings.TrimSpace(m.Serial)
		if serial == "" {
			continue
		}
		if _, ok := bySerial[serial]; !ok {
			order = append(order, serial)
		}
		bySerial[serial] = append(bySerial[serial], m)
	}

	doc := entity.StatsOverview{
		SchemaVersion: 1,
		GeneratedAt:   now.UTC().Format(time.RFC3339),
		SourceFiles:   []string{sourceFile},
		BySerial:      make([]entity.SerialStats, 0, len(order)),
		Rules:         pairingRules,
	}
	for _, serial := range order {
		list := bySerial[serial]
		sort.SliceStable(list, func(i, j int) bool {
			return dates.Normalize(list[i].Date) < dates.Normalize(list[j].Date)
		})
		s := SerialTrips(list)
		s.Serial = serial
		doc.BySerial = append(doc.BySerial, s)

		doc.Totals.TravelCount += s.TravelCount
		doc.Totals.RepairCount += s.RepairCount
		if s.TravelCount > 0 {
			doc.Totals.SerialsWithTravel++
		}
		if s.RepairCount > 0 {
			doc.Totals.SerialsWithRepair++
		}
	}

	sort.SliceStable(doc.BySerial, func(i, j int) bool {
		a, b := doc.BySerial[i], doc.BySerial[j]
		if ta, tb := a.TravelCount+a.RepairCount, b.TravelCount+b.RepairCount; ta != tb {
			return ta > tb
		}
		if a.TravelCount != b.TravelCount {
			return a.TravelCount > b.TravelCount
		}
		if a.RepairCount != b.RepairCount {
			return a.RepairCount > b.RepairCount
		}
		return a.Serial < b.Serial
	})
	return doc
}

// StatsBuilder writes stats_repairs_overview.json.
type StatsBuilder struct {
	Logger    *slog.Logger
	Snapshots repository.SnapshotRepository
	Now       func() time.Time
}

func NewStatsBuilder(logger *slog.Logger, snapshots repository.SnapshotRepository) *StatsBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsBuilder{Logger: logger, Snapshots: snapshots, Now: time.Now}
}

func (s *StatsBuilder) Run(ctx context.Context) (entity.StatsOverview, error) {
	moves, err := repository.ReadSnapshot[entity.Movement](s.Snapshots, constants.MovementsDB)
	if err != nil {
		return entity.StatsOverview{}, err
	}
	doc := Overview(moves, s.Snapshots.Path(constants.MovementsDB), s.Now())
	if err := s.Snapshots.WriteDocument(ctx, constants.StatsOverviewDB, doc); err != nil {
		return doc, err
	}
	s.Logger.Info("stats.write.ok",
		"serials", len(doc.BySerial),
		"travel", doc.Totals.TravelCount,
		"repair", doc.Totals.RepairCount,
	)
	return doc, nil
}
