package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/equipment-tracker/internal/entity"
)

// Output file names inside the export directory.
const (
	EquipmentCSV = "equipment.csv"
	MovementsCSV = "movements.csv"
	RepairsCSV   = "repairs.csv"
	WorkbookXLSX = "equipment_report.xlsx"
)

// Snapshot is the set of collections exported after a build.
type Snapshot struct {
	Equipment []entity.Equipment
	Movements []entity.Movement
	Repairs   []entity.Repair
}

// Service writes flat CSV and XLSX copies of the snapshots for people who
// work in spreadsheets.
type Service struct {
	dir    string
	logger *slog.Logger
}

func NewService(dir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{dir: dir, logger: logger}
}

type column[T any] struct {
	header string
	width  float64
	value  func(T) any
}

var equipmentColumns = []column[entity.Equipment]{
	{"serial", 16, func(e entity.Equipment) any { return e.Serial }},
	{"category", 16, func(e entity.Equipment) any { return e.Category }},
	{"currentLocation", 18, func(e entity.Equipment) any { return e.CurrentLocation }},
	{"status", 10, func(e entity.Equipment) any { return string(e.Status) }},
	{"lastMovement", 14, func(e entity.Equipment) any { return e.LastMovement }},
	{"repairCount", 12, func(e entity.Equipment) any { return e.RepairCount }},
	{"totalRepairCost", 16, func(e entity.Equipment) any { return e.TotalRepairCost }},
}

var movementColumns = []column[entity.Movement]{
	{"date", 12, func(m entity.Movement) any { return m.Date }},
	{"outLocation", 18, func(m entity.Movement) any { return m.OutLocation }},
	{"inLocation", 18, func(m entity.Movement) any { return m.InLocation }},
	{"equipmentName", 20, func(m entity.Movement) any { return m.EquipmentName }},
	{"serial", 16, func(m entity.Movement) any { return m.Serial }},
	{"quantity", 10, func(m entity.Movement) any { return m.Quantity }},
	{"note", 28, func(m entity.Movement) any { return m.Note }},
	{"status", 12, func(m entity.Movement) any { return m.Status }},
}

var repairColumns = []column[entity.Repair]{
	{"date", 12, func(r entity.Repair) any { return r.Date }},
	{"serial", 16, func(r entity.Repair) any { return r.Serial }},
	{"company", 18, func(r entity.Repair) any { return r.Company }},
	{"details", 40, func(r entity.Repair) any { return r.Details }},
	{"cost", 14, func(r entity.Repair) any { return r.Cost }},
}

// WriteAll writes the three CSV files and the workbook to the export
// directory and returns the paths written.
func (s *Service) WriteAll(ctx context.Context, snap Snapshot) ([]string, error) {
	start := time.Now()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	files := map[string][]byte{}
	var err error
	if files[EquipmentCSV], err = toCSV(snap.Equipment, equipmentColumns); err != nil {
		return nil, err
	}
	if files[MovementsCSV], err = toCSV(snap.Movements, movementColumns); err != nil {
		return nil, err
	}
	if files[RepairsCSV], err = toCSV(snap.Repairs, repairColumns); err != nil {
		return nil, err
	}
	if files[WorkbookXLSX], err = s.Workbook(snap); err != nil {
		return nil, err
	}

	written := make([]string, 0, len(files))
	for _, name := range []string{EquipmentCSV, MovementsCSV, RepairsCSV, WorkbookXLSX} {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		p := filepath.Join(s.dir, name)
		if err := os.WriteFile(p, files[name], 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, p)
	}

	s.logger.Info("export.write.ok",
		"dir", s.dir,
		"equipment", len(snap.Equipment),
		"movements", len(snap.Movements),
		"repairs", len(snap.Repairs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return written, nil
}

func toCSV[T any](rows []T, cols []column[T]) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	record := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			record[i] = cellText(c.value(r))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}
	return buf.Bytes(), nil
}

func cellText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

// Workbook returns an XLSX workbook (as bytes) with one sheet per
// collection.
func (s *Service) Workbook(snap Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := writeSheet(f, "Equipment", snap.Equipment, equipmentColumns); err != nil {
		return nil, err
	}
	if err := writeSheet(f, "Movements", snap.Movements, movementColumns); err != nil {
		return nil, err
	}
	if err := writeSheet(f, "Repairs", snap.Repairs, repairColumns); err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if idx, err := f.GetSheetIndex("Equipment"); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet[T any](f *excelize.File, sheet string, rows []T, cols []column[T]) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	for i, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, c.header); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, c.width)
	}
	for r, row := range rows {
		for i, c := range cols {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(sheet, cell, c.value(row)); err != nil {
				return err
			}
		}
	}
	return nil
}
