package reconcile

import (
	"math"
	"time"

	"github.com/joseph-ayodele/equipment-tracker/constants"
	"github.com/joseph-ayodele/equipment-tracker/internal/dates"
	"github.com/joseph-ayodele/equipment-tracker/internal/entity"
)

// UnknownCategory buckets movements of serials missing from the master list.
const UnknownCategory = "UNKNOWN"

// LatestBySerial returns, per serial, the movement with the greatest
// canonical date. Among equal dates the later record wins; undated records
// only win when a serial has nothing else.
func LatestBySerial(moves []entity.Movement) map[string]entity.Movement {
	latest := make(map[string]entity.Movement)
	latestDate := make(map[string]string)
	for _, m := range moves {
		if m.Serial == "" {
			continue
		}
		d := dates.Normalize(m.Date)
		if cur, ok := latestDate[m.Serial]; ok && d < cur {
			continue
		}
		latest[m.Serial] = m
		latestDate[m.Serial] = d
	}
	return latest
}

// Utilization computes the activity percentage per category. Active days
// are the distinct days with at least one movement of that category; the
// observed window is the inclusive span from the earliest to the latest
// dated movement of the whole set.
func Utilization(serials []entity.SerialEntry, moves []entity.Movement) map[string]int {
	category := make(map[string]string, len(serials))
	for _, s := range serials {
		category[s.Serial] = s.Category
	}

	active := map[string]map[string]struct{}{}
	var first, last time.Time
	for _, m := range moves {
		t, ok := dates.Parse(m.Date)
		if !ok {
			continue
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if last.IsZero() || t.After(last) {
			last = t
		}
		cat := category[m.Serial]
		if cat == "" {
			cat = UnknownCategory
		}
		if active[cat] == nil {
			active[cat] = map[string]struct{}{}
		}
		active[cat][t.Format(dates.Layout)] = struct{}{}
	}

	out := make(map[string]int, len(active))
	if first.IsZero() {
		return out
	}
	observed := dates.DaysInclusive(first, last)
	for cat, days := range active {
		out[cat] = int(math.Round(float64(len(days)) / float64(observed) * 100))
	}
	return out
}

type repairTotals struct {
	count int
	cost  int64
}

// effectiveCategories fills a blank source category from the previous
// snapshot, so output and utilization bucketing agree on one category.
func effectiveCategories(serials []entity.SerialEntry, prev map[string]entity.Equipment) []entity.SerialEntry {
	out := make([]entity.SerialEntry, len(serials))
	for i, s := range serials {
		if s.Category == "" {
			s.Category = prev[s.Serial].Category
		}
		out[i] = s
	}
	return out
}

// DeriveEquipment builds the equipment list for every serial of the master
// list. Placement comes from the latest movement's inbound location;
// category, lastMovement and utilization fall back to the previous snapshot
// when they cannot be computed. Serials missing from the master list drop.
func DeriveEquipment(serials []entity.SerialEntry, moves []entity.Movement, repairs []entity.Repair, prev []entity.Equipment) []entity.Equipment {
	prevBySerial := make(map[string]entity.Equipment, len(prev))
	for _, p := range prev {
		prevBySerial[p.Serial] = p
	}

	effective := effectiveCategories(serials, prevBySerial)
	latest := LatestBySerial(moves)
	uptime := Utilization(effective, moves)

	totals := map[string]repairTotals{}
	for _, r := range repairs {
		t := totals[r.Serial]
		t.count++
		t.cost += r.Cost
		totals[r.Serial] = t
	}

	out := make([]entity.Equipment, 0, len(effective))
	for _, s := range effective {
		p := prevBySerial[s.Serial]

		placement := constants.DefaultPlacement()
		lastMovement := ""
		if m, ok := latest[s.Serial]; ok {
			placement = constants.PlacementFor(m.InLocation)
			lastMovement = m.Date
		}
		if lastMovement == "" {
			lastMovement = p.LastMovement
		}

		bucket := s.Category
		if bucket == "" {
			bucket = UnknownCategory
		}
		pct := uptime[bucket]
		if pct == 0 {
			pct = p.UptimeEstimatePct
		}

		rt := totals[s.Serial]
		out = append(out, entity.Equipment{
			Serial:            s.Serial,
			Category:          s.Category,
			CurrentLocation:   placement.Location,
			Status:            placement.Status,
			LastMovement:      lastMovement,
			UptimeEstimatePct: pct,
			RepairCount:       rt.count,
			TotalRepairCost:   rt.cost,
		})
	}
	return out
}
