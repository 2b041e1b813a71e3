package textdecode

import "strings"

const (
	Tab   = '\t'
	Comma = ','
)

// DetectDelimiter picks tab or comma by counting them on the first line.
func DetectDelimiter(text string) rune {
	first, _, _ := strings.Cut(text, "\n")
	tabs := strings.Count(first, "\t")
	commas := strings.Count(first, ",")

	switch {
	case tabs > commas:
		return Tab
	case commas > tabs:
		return Comma
	case strings.Contains(first, "\t,") || strings.Contains(first, ",\t"):
		return Tab
	case tabs > 0:
		return Tab
	default:
		return Comma
	}
}
