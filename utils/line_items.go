package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
)

const (
	minLineLength      = 5
	minTableLineLength = 10

	number    = `(\d[\d,]*(?:\.\d+)?)`
	unitWords = `(?:pcs|pc|units|unit|n0s|nos|kgs|kg)\.?`
)

var (
	// name qty [unit] [x] unit_price total
	fullLinePattern = regexp.MustCompile(`(?i)^(.+?)\s+` + number + `\s+(?:` + unitWords + `\s+)?(?:x\s+)?` + number + `\s+` + number + `$`)
	// name qty [unit] total
	qtyTotalPattern = regexp.MustCompile(`(?i)^(.+?)\s+` + number + `\s+(?:` + unitWords + `\s+)?` + number + `$`)
	// name total
	totalOnlyPattern = regexp.MustCompile(`^(.+?)\s+` + number + `$`)

	tableColumnGap = regexp.MustCompile(`\s{2,}`)
	nonNumeric     = regexp.MustCompile(`[^\d.]`)
	leadingSerial  = regexp.MustCompile(`^\d+[.)]\s*`)

	// Undo the glyph substitution so labels can be recognised after normalisation.
	labelFold = strings.NewReplacer("0", "o", "1", "l")

	// Summary and header rows that look like "name amount" but are not items.
	nonItemLabels = map[string]bool{
		"total": true, "subtotal": true, "sub-total": true, "grand": true,
		"cgst": true, "sgst": true, "igst": true, "gst": true, "cess": true,
		"tax": true, "taxable": true, "invoice": true, "date": true,
		"amount": true, "balance": true, "discount": true, "round": true,
		"gstin": true, "phone": true, "tel": true, "pin": true,
	}
)

// lineStrategy tries to read one candidate item from a single line.
type lineStrategy func(line string) (dto.CandidateItem, bool)

// LineItemParser turns invoice text into candidate line items using an
// ordered cascade of line patterns, a two-line retry for wrapped rows and
// a column-split pass when nothing else matched.
type LineItemParser struct {
	normalizer *Normalizer
	tolerance  float64
	strategies []lineStrategy
}

func NewLineItemParser(normalizer *Normalizer, tolerance float64) *LineItemParser {
	p := &LineItemParser{
		normalizer: normalizer,
		tolerance:  tolerance,
	}
	p.strategies = []lineStrategy{
		p.matchFullLine,
		matchQtyTotal,
		matchTotalOnly,
	}
	return p
}

// Extract never fails. An empty result means no items were recognised.
func (p *LineItemParser) Extract(text string) []dto.CandidateItem {
	items := []dto.CandidateItem{}
	if strings.TrimSpace(text) == "" {
		return items
	}

	lines := strings.Split(p.normalizer.Normalize(text), "\n")
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if utf8.RuneCountInString(line) < minLineLength {
			continue
		}

		if item, ok := p.parseLine(line); ok {
			items = append(items, item)
			continue
		}

		// Wrapped row: join with the next line unless that line stands on its own.
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if isLabelLine(next) {
				continue
			}
			if _, ok := p.parseLine(next); ok {
				continue
			}
			if item, ok := p.parseLine(line + " " + next); ok {
				items = append(items, item)
				i++
			}
		}
	}

	if len(items) == 0 {
		items = p.extractTable(p.normalizer.Clean(text))
	}
	return items
}

func (p *LineItemParser) parseLine(line string) (dto.CandidateItem, bool) {
	for _, strategy := range p.strategies {
		if item, ok := strategy(line); ok {
			return item, true
		}
	}
	return dto.CandidateItem{}, false
}

func (p *LineItemParser) matchFullLine(line string) (dto.CandidateItem, bool) {
	m := fullLinePattern.FindStringSubmatch(line)
	if m == nil {
		return dto.CandidateItem{}, false
	}
	name, ok := itemName(m[1])
	if !ok {
		return dto.CandidateItem{}, false
	}
	qty, err1 := parseAmount(m[2])
	unitPrice, err2 := parseAmount(m[3])
	total, err3 := parseAmount(m[4])
	if err1 != nil || err2 != nil || err3 != nil {
		return dto.CandidateItem{}, false
	}
	if math.Abs(qty*unitPrice-total) > p.tolerance {
		return dto.CandidateItem{}, false
	}
	return dto.CandidateItem{Item: name, Qty: qty, UnitPrice: unitPrice, Total: total}, true
}

func matchQtyTotal(line string) (dto.CandidateItem, bool) {
	m := qtyTotalPattern.FindStringSubmatch(line)
	if m == nil {
		return dto.CandidateItem{}, false
	}
	name, ok := itemName(m[1])
	if !ok {
		return dto.CandidateItem{}, false
	}
	qty, err1 := parseAmount(m[2])
	total, err2 := parseAmount(m[3])
	if err1 != nil || err2 != nil {
		return dto.CandidateItem{}, false
	}
	return dto.CandidateItem{Item: name, Qty: qty, UnitPrice: unitPriceOf(total, qty), Total: total}, true
}

func matchTotalOnly(line string) (dto.CandidateItem, bool) {
	m := totalOnlyPattern.FindStringSubmatch(line)
	if m == nil {
		return dto.CandidateItem{}, false
	}
	name, ok := itemName(m[1])
	if !ok {
		return dto.CandidateItem{}, false
	}
	total, err := parseAmount(m[2])
	if err != nil {
		return dto.CandidateItem{}, false
	}
	return dto.CandidateItem{Item: name, Qty: 1, UnitPrice: total, Total: total}, true
}

// extractTable reads rows whose columns are separated by two or more spaces.
func (p *LineItemParser) extractTable(text string) []dto.CandidateItem {
	items := []dto.CandidateItem{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) < minTableLineLength {
			continue
		}

		parts := tableColumnGap.Split(line, -1)
		if len(parts) < 3 {
			continue
		}

		name, ok := itemName(parts[0])
		if !ok {
			continue
		}

		var numbers []float64
		for _, part := range parts[1:] {
			n, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(part, ""), 64)
			if err != nil {
				continue
			}
			numbers = append(numbers, n)
		}
		if len(numbers) < 2 {
			continue
		}

		total := numbers[len(numbers)-1]
		item := dto.CandidateItem{Item: name, Total: total}
		if len(numbers) >= 3 {
			item.Qty = numbers[len(numbers)-3]
			item.UnitPrice = numbers[len(numbers)-2]
		} else {
			item.Qty = numbers[len(numbers)-2]
			item.UnitPrice = unitPriceOf(total, item.Qty)
		}
		items = append(items, item)
	}
	return items
}

// itemName tidies a captured description and rejects names without a
// letter or that are summary labels such as "Total".
func itemName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	name = leadingSerial.ReplaceAllString(name, "")
	name = strings.TrimRight(name, " ,.-")
	if name == "" || strings.IndexFunc(name, unicode.IsLetter) < 0 {
		return "", false
	}

	if isLabelLine(name) {
		return "", false
	}
	return name, true
}

// isLabelLine reports whether a line starts with a summary or header label.
func isLabelLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	first := strings.ToLower(fields[0])
	first = strings.TrimRight(labelFold.Replace(first), ":.,-")
	return nonItemLabels[first]
}

// Tolerance is the allowed gap between qty*unit_price and total.
func (p *LineItemParser) Tolerance() float64 {
	return p.tolerance
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func unitPriceOf(total, qty float64) float64 {
	if qty == 0 {
		return 0
	}
	return total / qty
}
