// Package reconcile merges freshly parsed records into the previous
// snapshot and derives the per-equipment state.
package reconcile

import (
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/equipment-tracker/internal/dates"
	"github.com/joseph-ayodele/equipment-tracker/internal/entity"
)

// MovementKey identifies a movement: date, serial, out, in and quantity.
func MovementKey(m entity.Movement) string {
	q := m.Quantity
	if q == 0 {
		q = 1
	}
	return strings.Join([]string{
		dates.Normalize(m.Date),
		strings.TrimSpace(m.Serial),
		strings.TrimSpace(m.OutLocation),
		strings.TrimSpace(m.InLocation),
		strconv.Itoa(q),
	}, "|")
}

// RepairKey identifies a repair: date, serial, company and cost.
func RepairKey(r entity.Repair) string {
	return strings.Join([]string{
		dates.Normalize(r.Date),
		strings.TrimSpace(r.Serial),
		strings.TrimSpace(r.Company),
		strconv.FormatInt(r.Cost, 10),
	}, "|")
}

// mergeByKey unions prev and next. A key keeps the position where it was
// first seen while a later record with the same key replaces its value.
func mergeByKey[T any](prev, next []T, key func(T) string) []T {
	index := make(map[string]int, len(prev)+len(next))
	out := make([]T, 0, len(prev)+len(next))
	for _, batch := range [][]T{prev, next} {
		for _, rec := range batch {
			k := key(rec)
			if i, ok := index[k]; ok {
				out[i] = rec
				continue
			}
			index[k] = len(out)
			out = append(out, rec)
		}
	}
	return out
}

// MergeMovements unions the previous snapshot with new movements and sorts
// the result by canonical date. Records without a date sort first.
func MergeMovements(prev, next []entity.Movement) []entity.Movement {
	merged := mergeByKey(prev, next, MovementKey)
	SortMovements(merged)
	return merged
}

// MergeRepairs unions the previous snapshot with new repairs.
func MergeRepairs(prev, next []entity.Repair) []entity.Repair {
	return mergeByKey(prev, next, RepairKey)
}

// SortMovements stably orders movements by canonical date.
func SortMovements(ms []entity.Movement) {
	type keyed struct {
		date string
		m    entity.Movement
	}
	tmp := make([]keyed, len(ms))
	for i, m := range ms {
		tmp[i] = keyed{date: dates.Normalize(m.Date), m: m}
	}
	sort.SliceStable(tmp, func(i, j int) bool { return tmp[i].date < tmp[j].date })
	for i := range tmp {
		ms[i] = tmp[i].m
	}
}
