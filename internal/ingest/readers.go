package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/equipment-tracker/internal/common"
	"github.com/joseph-ayodele/equipment-tracker/internal/textdecode"
)

// ReadDelimited decodes a CSV/TSV export of unknown encoding into rows.
// An undecodable or empty file yields no rows and no error.
func ReadDelimited(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, "read "+path)
	}
	rows, err := textdecode.Load(raw)
	if err != nil {
		return rows, common.WrapError(err, "parse "+path)
	}
	return rows, nil
}

// Workbook is the text content of every sheet of an XLSX file.
type Workbook struct {
	SheetNames []string
	Sheets     map[string][][]string
}

// First returns the rows of the first sheet.
func (w Workbook) First() [][]string {
	if len(w.SheetNames) == 0 {
		return nil
	}
	return w.Sheets[w.SheetNames[0]]
}

// ReadWorkbook loads every sheet as formatted cell text.
func ReadWorkbook(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Workbook{}, common.WrapError(err, "open workbook "+path)
	}
	defer func() { _ = f.Close() }()

	wb := Workbook{SheetNames: f.GetSheetList(), Sheets: map[string][][]string{}}
	for _, name := range wb.SheetNames {
		rows, err := f.GetRows(name)
		if err != nil {
			return wb, fmt.Errorf("read sheet %q: %w", name, err)
		}
		wb.Sheets[name] = rows
	}
	return wb, nil
}

// ReadJSONRecords reads a JSON array of objects. Non-object elements are
// skipped; a top-level value that is not an array yields no records.
func ReadJSONRecords(path string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, "read "+path)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		var m map[string]any
		if err := json.Unmarshal(it, &m); err != nil || m == nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
