package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/shopspring/decimal"
)

const topHSNLimit = 10

// Supported trend groupings.
const (
	GroupByDay     = "day"
	GroupByWeek    = "week"
	GroupByMonth   = "month"
	GroupByQuarter = "quarter"
)

// ValidGroupBy reports whether g is a supported trend grouping.
func ValidGroupBy(g string) bool {
	switch g {
	case GroupByDay, GroupByWeek, GroupByMonth, GroupByQuarter:
		return true
	}
	return false
}

// StatsQuery bounds the statistics. Nil bounds are open; To is inclusive.
type StatsQuery struct {
	From    *time.Time
	To      *time.Time
	GroupBy string
}

type StatsService struct {
	store InvoiceStore
}

func NewStatsService(store InvoiceStore) *StatsService {
	return &StatsService{store: store}
}

type hsnTotals struct {
	description string
	rate        float64
	count       int
	taxable     decimal.Decimal
	tax         decimal.Decimal
}

type periodTotals struct {
	invoices int
	taxable  decimal.Decimal
	tax      decimal.Decimal
}

// Stats aggregates stored invoices into slab, HSN and time-series views.
func (s *StatsService) Stats(ctx context.Context, q StatsQuery) (*dto.StatsResponse, error) {
	if q.GroupBy == "" {
		q.GroupBy = GroupByMonth
	}
	if !ValidGroupBy(q.GroupBy) {
		return nil, fmt.Errorf("unsupported group_by %q", q.GroupBy)
	}

	all, err := s.store.ListInvoicesWithItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	var invoices []dto.Invoice
	for _, inv := range all {
		if inRange(inv.CreatedAt, q.From, q.To) {
			invoices = append(invoices, inv)
		}
	}

	resp := &dto.StatsResponse{
		GroupBy:          q.GroupBy,
		SlabDistribution: []dto.SlabStat{},
		TopHSNCodes:      []dto.HSNStat{},
		Trend:            []dto.TrendPoint{},
	}
	if len(invoices) == 0 {
		return resp, nil
	}

	slabs := make(map[float64]*slabTotals)
	slabTax := make(map[float64]decimal.Decimal)
	hsn := make(map[string]*hsnTotals)
	periods := make(map[time.Time]*periodTotals)
	totalTaxable, totalTax := decimal.Zero, decimal.Zero

	for _, inv := range invoices {
		start := periodStart(inv.CreatedAt, q.GroupBy)
		pt, ok := periods[start]
		if !ok {
			pt = &periodTotals{taxable: decimal.Zero, tax: decimal.Zero}
			periods[start] = pt
		}
		pt.invoices++

		for _, it := range inv.Items {
			taxable := decimal.NewFromFloat(it.Total)
			tax := taxOn(taxable, it.GSTRate)
			totalTaxable = totalTaxable.Add(taxable)
			totalTax = totalTax.Add(tax)
			pt.taxable = pt.taxable.Add(taxable)
			pt.tax = pt.tax.Add(tax)
			resp.ItemCount++

			st, ok := slabs[it.GSTRate]
			if !ok {
				st = &slabTotals{rate: it.GSTRate, taxable: decimal.Zero}
				slabs[it.GSTRate] = st
				slabTax[it.GSTRate] = decimal.Zero
			}
			st.count++
			st.taxable = st.taxable.Add(taxable)
			slabTax[it.GSTRate] = slabTax[it.GSTRate].Add(tax)

			if it.HSNCode == "" {
				continue
			}
			ht, ok := hsn[it.HSNCode]
			if !ok {
				ht = &hsnTotals{description: it.Item, rate: it.GSTRate, taxable: decimal.Zero, tax: decimal.Zero}
				hsn[it.HSNCode] = ht
			}
			ht.count++
			ht.taxable = ht.taxable.Add(taxable)
			ht.tax = ht.tax.Add(tax)
		}
	}

	resp.InvoiceCount = len(invoices)
	resp.TotalTaxable = totalTaxable.Round(2).InexactFloat64()
	resp.TotalTax = totalTax.Round(2).InexactFloat64()
	n := decimal.NewFromInt(int64(len(invoices)))
	resp.AvgTaxPerInvoice = totalTax.Div(n).Round(2).InexactFloat64()
	resp.AvgItemsPerInvoice = decimal.NewFromInt(int64(resp.ItemCount)).Div(n).Round(2).InexactFloat64()

	for _, r := range sortedRates(slabs) {
		st := slabs[r]
		resp.SlabDistribution = append(resp.SlabDistribution, dto.SlabStat{
			GSTRate:       r,
			ItemCount:     st.count,
			TaxableAmount: st.taxable.Round(2).InexactFloat64(),
			TaxAmount:     slabTax[r].Round(2).InexactFloat64(),
		})
	}

	resp.TopHSNCodes = topHSNCodes(hsn, topHSNLimit)
	resp.Trend = buildTrend(periods, q.GroupBy)
	return resp, nil
}

// topHSNCodes orders codes by how often they occur, then by taxable value.
func topHSNCodes(hsn map[string]*hsnTotals, limit int) []dto.HSNStat {
	out := make([]dto.HSNStat, 0, len(hsn))
	for code, ht := range hsn {
		out = append(out, dto.HSNStat{
			HSNCode:       code,
			Description:   ht.description,
			GSTRate:       ht.rate,
			ItemCount:     ht.count,
			TaxableAmount: ht.taxable.Round(2).InexactFloat64(),
			TaxAmount:     ht.tax.Round(2).InexactFloat64(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemCount != out[j].ItemCount {
			return out[i].ItemCount > out[j].ItemCount
		}
		if out[i].TaxableAmount != out[j].TaxableAmount {
			return out[i].TaxableAmount > out[j].TaxableAmount
		}
		return out[i].HSNCode < out[j].HSNCode
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// buildTrend emits every period between the first and last one seen,
// including empty ones.
func buildTrend(periods map[time.Time]*periodTotals, groupBy string) []dto.TrendPoint {
	var first, last time.Time
	for start := range periods {
		if first.IsZero() || start.Before(first) {
			first = start
		}
		if start.After(last) {
			last = start
		}
	}

	var out []dto.TrendPoint
	for p := first; !p.After(last); p = nextPeriod(p, groupBy) {
		point := dto.TrendPoint{
			Date:   p.Format("2006-01-02"),
			Period: periodLabel(p, groupBy),
		}
		if pt, ok := periods[p]; ok {
			point.InvoiceCount = pt.invoices
			point.TaxableAmount = pt.taxable.Round(2).InexactFloat64()
			point.TaxAmount = pt.tax.Round(2).InexactFloat64()
		}
		out = append(out, point)
	}
	return out
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	return to == nil || !t.After(*to)
}

func periodStart(t time.Time, groupBy string) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	switch groupBy {
	case GroupByDay:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case GroupByWeek:
		// weeks start on Monday
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
	case GroupByQuarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
}

func nextPeriod(t time.Time, groupBy string) time.Time {
	switch groupBy {
	case GroupByDay:
		return t.AddDate(0, 0, 1)
	case GroupByWeek:
		return t.AddDate(0, 0, 7)
	case GroupByQuarter:
		return t.AddDate(0, 3, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

func periodLabel(t time.Time, groupBy string) string {
	switch groupBy {
	case GroupByDay:
		return t.Format("Jan 02, 2006")
	case GroupByWeek:
		return "Week of " + t.Format("Jan 02, 2006")
	case GroupByQuarter:
		return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
	default:
		return t.Format("Jan 2006")
	}
}
