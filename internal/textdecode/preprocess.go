package textdecode

import (
	"regexp"
	"strings"
)

var (
	tabThenComma = regexp.MustCompile(`\t\s*,`)
	commaThenTab = regexp.MustCompile(`,\s*\t`)
)

// Banner lines some ERP exports put above the real header row.
var bannerMarkers = []string{"회사명", "장비투입현황"}

// Preprocess normalizes line endings, drops a leading report banner and
// collapses mixed tab/comma separators into plain commas.
func Preprocess(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	if first, rest, ok := strings.Cut(text, "\n"); ok || first != "" {
		for _, m := range bannerMarkers {
			if strings.Contains(first, m) {
				text = rest
				break
			}
		}
	}

	text = tabThenComma.ReplaceAllString(text, ",")
	text = commaThenTab.ReplaceAllString(text, ",")
	return text
}
