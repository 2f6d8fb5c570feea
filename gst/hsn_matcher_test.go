package gst

import (
	"testing"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/stretchr/testify/assert"
)

func newFallbackMatcher() *HsnMatcher {
	return NewHsnMatcher(NewHsnTable(FallbackEntries()), DefaultMatchThreshold)
}

func TestMatchChocolateBiscuits(t *testing.T) {
	code, rate, ok := newFallbackMatcher().Match("chocolate biscuits")

	assert.True(t, ok)
	assert.Equal(t, "1905", code)
	assert.Equal(t, 18.0, rate)
}

func TestMatchUnknownItem(t *testing.T) {
	code, rate, ok := newFallbackMatcher().Match("xyz123 unknown widget")

	assert.False(t, ok)
	assert.Empty(t, code)
	assert.Zero(t, rate)
}

func TestMatchRequiresKeywordLongerThanThreeLetters(t *testing.T) {
	table := NewHsnTable([]dto.HsnEntry{{HSNCode: "0902", Description: "Tea", GSTRate: 5}})
	m := NewHsnMatcher(table, DefaultMatchThreshold)

	_, _, ok := m.Match("green tea")
	assert.False(t, ok)
}

func TestMatchThresholdIsStrict(t *testing.T) {
	// "chocolate biscuits" scores exactly 62 against the biscuits entry.
	m := NewHsnMatcher(NewHsnTable(FallbackEntries()), 62)

	_, _, ok := m.Match("chocolate biscuits")
	assert.False(t, ok)
}

func TestMatchKeepsFirstEntryOnTie(t *testing.T) {
	table := NewHsnTable([]dto.HsnEntry{
		{HSNCode: "1111", Description: "Vacuum cleaners", GSTRate: 28},
		{HSNCode: "2222", Description: "Vacuum cleaners", GSTRate: 18},
	})

	code, rate, ok := NewHsnMatcher(table, DefaultMatchThreshold).Match("vacuum cleaners")

	assert.True(t, ok)
	assert.Equal(t, "1111", code)
	assert.Equal(t, 28.0, rate)
}

func TestMatchPicksHighestScore(t *testing.T) {
	table := NewHsnTable([]dto.HsnEntry{
		{HSNCode: "8516", Description: "Electric heating equipment", GSTRate: 28},
		{HSNCode: "851671", Description: "Electric kettles", GSTRate: 18},
	})

	code, rate, ok := NewHsnMatcher(table, DefaultMatchThreshold).Match("electric kettles")

	assert.True(t, ok)
	assert.Equal(t, "851671", code)
	assert.Equal(t, 18.0, rate)
}

func TestMatchWashingPowder(t *testing.T) {
	code, rate, ok := newFallbackMatcher().Match("Washing powder")

	assert.True(t, ok)
	assert.Equal(t, "3402", code)
	assert.Equal(t, 18.0, rate)
}
