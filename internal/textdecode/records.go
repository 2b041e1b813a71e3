package textdecode

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// Records splits delimited text into trimmed rows, skipping blank lines.
// Quoting is lenient and rows may have any number of fields.
func Records(text string, delim rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\uFEFF")))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}
		blank := true
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
			if rec[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// Load runs the full pipeline: decode, preprocess, detect the delimiter
// and split into rows.
func Load(raw []byte) ([][]string, error) {
	text := Preprocess(Decode(raw))
	return Records(text, DetectDelimiter(text))
}
