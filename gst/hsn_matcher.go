package gst

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const DefaultMatchThreshold = 60

// HsnMatcher maps an item description to an HSN reference entry by
// keyword gating followed by fuzzy scoring.
type HsnMatcher struct {
	table     *HsnTable
	threshold float64
}

func NewHsnMatcher(table *HsnTable, threshold float64) *HsnMatcher {
	return &HsnMatcher{table: table, threshold: threshold}
}

// Match returns the best reference entry whose description shares a
// keyword (longer than 3 letters) with the item and scores above the
// threshold. The first entry wins ties.
func (m *HsnMatcher) Match(description string) (code string, rate float64, ok bool) {
	item := strings.ToLower(description)
	bestScore := -1

	for _, entry := range m.table.entries {
		if !sharesKeyword(entry.Description, item) {
			continue
		}
		score := TokenSetRatio(entry.Description, description)
		if score > bestScore {
			bestScore = score
			code, rate = entry.HSNCode, entry.GSTRate
		}
	}

	if bestScore >= 0 && float64(bestScore) > m.threshold {
		return code, rate, true
	}
	return "", 0, false
}

func sharesKeyword(reference, item string) bool {
	for _, tok := range strings.Fields(strings.ToLower(reference)) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if utf8.RuneCountInString(tok) > 3 && strings.Contains(item, tok) {
			return true
		}
	}
	return false
}
