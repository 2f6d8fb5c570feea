package utils

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// Glyphs Tesseract commonly confuses with digits. Applied globally, so
	// ordinary words lose their l/o letters too.
	confusableGlyphs = strings.NewReplacer("|", "1", "l", "1", "O", "0", "o", "0")
	currencySymbols  = strings.NewReplacer("₹", "", "$", "", "€", "", "£", "")

	lineBreakRun    = regexp.MustCompile(`[^\S\n]*\n\s*`)
	spaceRun        = regexp.MustCompile(`[^\S\n]+`)
	disallowedChars = regexp.MustCompile(`[^\p{L}\p{N}_\s.,\-]`)
)

// Normalizer cleans raw OCR output before line items are parsed.
type Normalizer struct {
	substitute bool
}

// NewNormalizer returns a Normalizer. When substitute is true the OCR
// confusion table (| l O o) is applied.
func NewNormalizer(substitute bool) *Normalizer {
	return &Normalizer{substitute: substitute}
}

// Normalize substitutes confusable glyphs, collapses whitespace, strips
// currency symbols and drops everything outside letters, digits, '_',
// whitespace, '.', ',' and '-'. Line breaks survive as single '\n'.
// Normalize(Normalize(s)) == Normalize(s).
func (n *Normalizer) Normalize(text string) string {
	text = n.fold(text)
	text = collapseWhitespace(text)
	text = currencySymbols.Replace(text)
	text = disallowedChars.ReplaceAllString(text, "")
	return collapseWhitespace(text)
}

// Clean is Normalize without whitespace collapsing. Column gaps are kept
// for the table pass.
func (n *Normalizer) Clean(text string) string {
	text = n.fold(text)
	text = currencySymbols.Replace(text)
	return disallowedChars.ReplaceAllString(text, "")
}

func (n *Normalizer) fold(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = norm.NFKC.String(text)
	if n.substitute {
		text = confusableGlyphs.Replace(text)
	}
	return text
}

func collapseWhitespace(text string) string {
	text = lineBreakRun.ReplaceAllString(text, "\n")
	text = spaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
