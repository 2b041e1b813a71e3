// Package textdecode turns raw spreadsheet exports of unknown encoding into
// clean UTF-8 text ready for delimited parsing.
package textdecode

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	hangulWeight      = 5
	replacementWeight = 10
	failedScore       = -1_000_000_000
)

// Candidate is one decoding attempted by Decode.
type Candidate struct {
	Name  string
	Text  string
	Score int
}

type namedEncoding struct {
	name string
	enc  encoding.Encoding
}

// korean.EUCKR in x/text is the CP949 (Unified Hangul Code) superset, so a
// single candidate covers both euc-kr and cp949 exports.
var candidates = []namedEncoding{
	{name: "utf-8", enc: unicode.UTF8},
	{name: "utf-16le", enc: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
	{name: "cp949", enc: korean.EUCKR},
}

// Decode tries every candidate encoding and returns the highest scoring text.
// Ties keep the earlier candidate. Empty input yields "".
func Decode(raw []byte) string {
	best, _ := DecodeBest(raw)
	return best.Text
}

// DecodeBest is Decode but also reports every candidate that was tried.
func DecodeBest(raw []byte) (Candidate, []Candidate) {
	tried := make([]Candidate, 0, len(candidates))
	if len(raw) == 0 {
		return Candidate{}, tried
	}

	var best Candidate
	found := false
	for _, c := range candidates {
		cand := Candidate{Name: c.name, Score: failedScore}
		decoded, _, err := transform.Bytes(c.enc.NewDecoder(), raw)
		if err == nil {
			cand.Text = string(bytes.TrimPrefix(decoded, []byte("\uFEFF")))
			cand.Score = Score(cand.Text)
		}
		tried = append(tried, cand)
		if !found || cand.Score > best.Score {
			best = cand
			found = true
		}
	}
	if best.Score == failedScore {
		return Candidate{}, tried
	}
	return best, tried
}

// Score rewards Hangul syllables and penalizes replacement characters.
func Score(s string) int {
	score := 0
	for _, r := range s {
		switch {
		case r >= 0xAC00 && r <= 0xD7A3:
			score += hangulWeight
		case r == utf8.RuneError:
			score -= replacementWeight
		}
	}
	return score
}
