// Package normalize maps loosely structured spreadsheet rows onto snapshot
// entities through an alias table of known header spellings.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	punctuation = regexp.MustCompile(`[._-]+`)
)

// Key canonicalizes a header: trimmed, lowercased, without whitespace and
// without '.', '_' or '-'.
func Key(header string) string {
	k := strings.ToLower(strings.TrimSpace(header))
	k = whitespace.ReplaceAllString(k, "")
	return punctuation.ReplaceAllString(k, "")
}

// Row is a single source record addressable by header name or position.
type Row struct {
	named map[string]string
	cells []string
}

// NewHeaderRow pairs cells with header names. Duplicate headers resolve to
// the right-most column.
func NewHeaderRow(header, cells []string) Row {
	named := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(cells) {
			named[Key(h)] = cells[i]
		} else {
			named[Key(h)] = ""
		}
	}
	return Row{named: named, cells: cells}
}

// NewPositionalRow wraps cells that have no usable header.
func NewPositionalRow(cells []string) Row {
	return Row{cells: cells}
}

// NewMapRow wraps a decoded JSON object. Non-string scalars are rendered
// with their natural text form.
func NewMapRow(m map[string]any) Row {
	named := make(map[string]string, len(m))
	for k, v := range m {
		named[Key(k)] = Stringify(v)
	}
	return Row{named: named}
}

// Lookup returns the first alias whose value is non-blank, trimmed.
func (r Row) Lookup(aliases ...string) string {
	if r.named == nil {
		return ""
	}
	for _, a := range aliases {
		if v := strings.TrimSpace(r.named[Key(a)]); v != "" {
			return v
		}
	}
	return ""
}

// Get resolves a canonical field through the alias table.
func (r Row) Get(t AliasTable, f Field) string {
	return r.Lookup(t[f]...)
}

// At returns the trimmed cell at position i, or "" when out of range.
func (r Row) At(i int) string {
	if i < 0 || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// Stringify renders a JSON scalar the way a spreadsheet cell would show it.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

var (
	notQuantity = regexp.MustCompile(`[^0-9-]`)
	notDigit    = regexp.MustCompile(`[^0-9]`)
	leadingInt  = regexp.MustCompile(`^-?\d+`)
)

// Quantity keeps digits and '-', parses the leading integer and falls back
// to 1 when nothing parses or the result is zero.
func Quantity(s string) int {
	n, ok := leadingNumber(notQuantity.ReplaceAllString(s, ""))
	if !ok || n == 0 {
		return 1
	}
	return int(n)
}

// Count is Quantity without the default: unparseable text yields 0.
func Count(s string) int {
	n, _ := leadingNumber(notQuantity.ReplaceAllString(s, ""))
	return int(n)
}

// Amount keeps only digits, so separators and currency marks vanish and
// the result is never negative. Unparseable text yields 0.
func Amount(s string) int64 {
	n, ok := leadingNumber(notDigit.ReplaceAllString(s, ""))
	if !ok {
		return 0
	}
	return n
}

func leadingNumber(s string) (int64, bool) {
	m := leadingInt.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
