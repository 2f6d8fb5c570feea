package service

import (
	"sort"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// taxOn returns the GST due on a taxable amount at a percentage rate,
// rounded to paise.
func taxOn(taxable decimal.Decimal, rate float64) decimal.Decimal {
	return taxable.Mul(decimal.NewFromFloat(rate)).Div(hundred).Round(2)
}

type slabTotals struct {
	rate    float64
	count   int
	taxable decimal.Decimal
}

// ComputeBreakdown groups items by GST rate. Item totals are taken as
// taxable values; intra-state supply splits the tax evenly into CGST and
// SGST.
func ComputeBreakdown(items []dto.ClassifiedItem) (dto.InvoiceSummary, []dto.SlabBreakdown) {
	bySlab := make(map[float64]*slabTotals)
	subtotal := decimal.Zero
	for _, it := range items {
		total := decimal.NewFromFloat(it.Total)
		subtotal = subtotal.Add(total)

		st, ok := bySlab[it.GSTRate]
		if !ok {
			st = &slabTotals{rate: it.GSTRate, taxable: decimal.Zero}
			bySlab[it.GSTRate] = st
		}
		st.count++
		st.taxable = st.taxable.Add(total)
	}

	rates := sortedRates(bySlab)

	totalTax := decimal.Zero
	breakdown := make([]dto.SlabBreakdown, 0, len(rates))
	for _, r := range rates {
		st := bySlab[r]
		tax := taxOn(st.taxable, r)
		cgst := tax.Div(decimal.NewFromInt(2)).Round(2)
		sgst := tax.Sub(cgst)
		totalTax = totalTax.Add(tax)

		breakdown = append(breakdown, dto.SlabBreakdown{
			GSTRate:       r,
			ItemCount:     st.count,
			TaxableAmount: st.taxable.Round(2).InexactFloat64(),
			CGST:          cgst.InexactFloat64(),
			SGST:          sgst.InexactFloat64(),
			IGST:          0,
			TaxAmount:     tax.InexactFloat64(),
		})
	}

	summary := dto.InvoiceSummary{
		Subtotal:   subtotal.Round(2).InexactFloat64(),
		TotalGST:   totalTax.InexactFloat64(),
		GrandTotal: subtotal.Add(totalTax).Round(2).InexactFloat64(),
	}
	return summary, breakdown
}

func classifiedOf(items []dto.StoredItem) []dto.ClassifiedItem {
	out := make([]dto.ClassifiedItem, len(items))
	for i, it := range items {
		out[i] = it.ClassifiedItem
	}
	return out
}

func sortedRates(m map[float64]*slabTotals) []float64 {
	rates := make([]float64, 0, len(m))
	for r := range m {
		rates = append(rates, r)
	}
	sort.Float64s(rates)
	return rates
}
