package normalize

import (
	"github.com/joseph-ayodele/equipment-tracker/constants"
	"github.com/joseph-ayodele/equipment-tracker/internal/dates"
	"github.com/joseph-ayodele/equipment-tracker/internal/entity"
)

// Serials maps the serial master list. The first row is read as a header;
// when that yields nothing the rows are read positionally as
// [_, category, serial]. Repeated serials keep their first position and a
// blank category is filled from a later row.
func Serials(rows [][]string) []entity.SerialEntry {
	out := serialsByHeader(rows)
	if len(out) == 0 {
		out = serialsByPosition(rows)
	}
	return dedupSerials(out)
}

func serialsByHeader(rows [][]string) []entity.SerialEntry {
	if len(rows) < 2 {
		return nil
	}
	var out []entity.SerialEntry
	for _, cells := range rows[1:] {
		r := NewHeaderRow(rows[0], cells)
		serial := r.Get(SerialAliases, FieldSerial)
		if serial == "" {
			continue
		}
		out = append(out, entity.SerialEntry{Serial: serial, Category: r.Get(SerialAliases, FieldCategory)})
	}
	return out
}

func serialsByPosition(rows [][]string) []entity.SerialEntry {
	var out []entity.SerialEntry
	for i := 1; i < len(rows); i++ {
		r := NewPositionalRow(rows[i])
		serial := r.At(2)
		if serial == "" {
			continue
		}
		out = append(out, entity.SerialEntry{Serial: serial, Category: r.At(1)})
	}
	return out
}

func dedupSerials(in []entity.SerialEntry) []entity.SerialEntry {
	index := make(map[string]int, len(in))
	out := make([]entity.SerialEntry, 0, len(in))
	for _, e := range in {
		if i, ok := index[e.Serial]; ok {
			if out[i].Category == "" {
				out[i].Category = e.Category
			}
			continue
		}
		index[e.Serial] = len(out)
		out = append(out, e)
	}
	return out
}

// Movements maps a movement log or stock snapshot. Header mapping is tried
// first; if it produces no movement the rows are read positionally as
// [date, out, in, name, serial, qty, note, status].
func Movements(rows [][]string) []entity.Movement {
	if out := movementsByHeader(rows); len(out) > 0 {
		return out
	}
	return movementsByPosition(rows)
}

func movementsByHeader(rows [][]string) []entity.Movement {
	if len(rows) < 2 {
		return nil
	}
	var moves, stock []entity.Movement
	for _, cells := range rows[1:] {
		r := NewHeaderRow(rows[0], cells)
		serial := r.Get(MovementAliases, FieldSerial)
		if serial == "" {
			continue
		}
		date := dates.Normalize(r.Get(MovementAliases, FieldDate))
		if m, ok := stockMovement(r, date, serial); ok {
			stock = append(stock, m)
			continue
		}
		moves = append(moves, entity.Movement{
			Date:          date,
			OutLocation:   r.Get(MovementAliases, FieldOut),
			InLocation:    r.Get(MovementAliases, FieldIn),
			EquipmentName: r.Get(MovementAliases, FieldName),
			Serial:        serial,
			Quantity:      Quantity(r.Get(MovementAliases, FieldQuantity)),
			Note:          r.Get(MovementAliases, FieldNote),
			Status:        r.Get(MovementAliases, FieldStatus),
		})
	}
	return append(moves, stock...)
}

// stockMovement turns a per-location stock snapshot row into one synthetic
// movement into the location holding stock, vendor first.
func stockMovement(r Row, date, serial string) (entity.Movement, bool) {
	hq := r.Get(MovementAliases, FieldStockHQ)
	site := r.Get(MovementAliases, FieldStockSite)
	vendor := r.Get(MovementAliases, FieldStockVend)
	if hq == "" && site == "" && vendor == "" {
		return entity.Movement{}, false
	}

	in := ""
	switch {
	case Count(vendor) > 0:
		in = string(constants.LocationVendor)
	case Count(site) > 0:
		in = string(constants.LocationField)
	case Count(hq) > 0:
		in = string(constants.LocationHeadquarters)
	}
	return entity.Movement{Date: date, InLocation: in, Serial: serial, Quantity: 1}, true
}

func movementsByPosition(rows [][]string) []entity.Movement {
	var out []entity.Movement
	for i := 1; i < len(rows); i++ {
		r := NewPositionalRow(rows[i])
		serial := r.At(4)
		if serial == "" {
			continue
		}
		out = append(out, entity.Movement{
			Date:          dates.Normalize(r.At(0)),
			OutLocation:   r.At(1),
			InLocation:    r.At(2),
			EquipmentName: r.At(3),
			Serial:        serial,
			Quantity:      Quantity(r.At(5)),
			Note:          r.At(6),
			Status:        r.At(7),
		})
	}
	return out
}

// Repairs maps the repair workbook rows (first row is the header).
func Repairs(rows [][]string) []entity.Repair {
	if len(rows) < 2 {
		return nil
	}
	var out []entity.Repair
	for _, cells := range rows[1:] {
		if r, ok := repair(NewHeaderRow(rows[0], cells), RepairAliases); ok {
			out = append(out, r)
		}
	}
	return out
}

// CleanRepairs maps records from the repairs_db_clean.json fallback.
func CleanRepairs(records []map[string]any) []entity.Repair {
	var out []entity.Repair
	for _, rec := range records {
		if r, ok := repair(NewMapRow(rec), CleanRepairAliases); ok {
			out = append(out, r)
		}
	}
	return out
}

func repair(r Row, t AliasTable) (entity.Repair, bool) {
	serial := r.Get(t, FieldSerial)
	if serial == "" {
		return entity.Repair{}, false
	}
	raw := r.Get(t, FieldDate)
	date := dates.Normalize(raw)
	if date == "" {
		date = raw
	}
	return entity.Repair{
		Date:    date,
		Serial:  serial,
		Company: r.Get(t, FieldCompany),
		Details: r.Get(t, FieldDetails),
		Cost:    Amount(r.Get(t, FieldCost)),
	}, true
}
