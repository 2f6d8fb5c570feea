package gst

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// TokenSetRatio scores two descriptions from 0 to 100. Word order,
// punctuation, case and repeated words are ignored, and a description
// whose words are a subset of the other's scores 100.
func TokenSetRatio(a, b string) int {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for tok := range setA {
		if setB[tok] {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range setB {
		if !setA[tok] {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(common, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	return max(
		ratio(sect, combinedA),
		ratio(sect, combinedB),
		ratio(combinedA, combinedB),
	)
}

func tokenSet(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// ratio is 2*LCS/(len(a)+len(b)) scaled to 0-100.
func ratio(a, b string) int {
	r1, r2 := []rune(a), []rune(b)
	total := len(r1) + len(r2)
	if total == 0 || len(r1) == 0 || len(r2) == 0 {
		return 0
	}
	return int(math.Round(200 * float64(longestCommonSubsequence(r1, r2)) / float64(total)))
}

func longestCommonSubsequence(r1, r2 []rune) int {
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	for i := 1; i <= len(r1); i++ {
		for j := 1; j <= len(r2); j++ {
			if r1[i-1] == r2[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
