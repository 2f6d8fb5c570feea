package gst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"Bread, pastry, cakes, biscuits", "chocolate biscuits", 62},
		{"Soap, organic surface-active products", "soap", 100},
		{"Air conditioning machines", "MACHINES air conditioning", 100},
		{"Washing and cleaning preparations", "washing powder", 67},
		{"", "anything", 0},
		{"...", "anything", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TokenSetRatio(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestTokenSetRatioIsSymmetric(t *testing.T) {
	a, b := "Telephones, smartphones", "mobile phone"

	assert.Equal(t, TokenSetRatio(a, b), TokenSetRatio(b, a))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, ratio("abc", "abc"))
	assert.Equal(t, 0, ratio("abc", "xyz"))
	assert.Equal(t, 0, ratio("", ""))
	assert.Equal(t, 50, ratio("ab", "cb"))
}
