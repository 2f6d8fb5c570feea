package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const NoGSTR1Data = "No data available for GSTR-1 report"

var gstr1Header = []string{
	"GSTIN", "Receiver GSTIN", "Invoice Number", "Invoice Date", "Invoice Value",
	"Place of Supply", "Reverse Charge", "Invoice Type", "Rate", "Taxable Value",
	"Integrated Tax", "Central Tax", "State/UT Tax", "Cess",
}

type ReportService struct {
	store         InvoiceStore
	businessGSTIN string
	placeOfSupply string
	now           func() time.Time
}

func NewReportService(store InvoiceStore, businessGSTIN, placeOfSupply string) *ReportService {
	return &ReportService{
		store:         store,
		businessGSTIN: businessGSTIN,
		placeOfSupply: placeOfSupply,
		now:           time.Now,
	}
}

// JSONReport builds the report for one stored invoice.
func (s *ReportService) JSONReport(ctx context.Context, invoiceID string) (*dto.InvoiceReport, error) {
	inv, err := s.store.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	summary, breakdown := ComputeBreakdown(classifiedOf(inv.Items))
	items := inv.Items
	if items == nil {
		items = []dto.StoredItem{}
	}
	return &dto.InvoiceReport{
		InvoiceID:    inv.ID,
		FileName:     inv.FileName,
		GeneratedAt:  s.now().Format(time.RFC3339),
		Items:        items,
		Summary:      summary,
		GSTBreakdown: breakdown,
		EInvoice:     inv.EInvoice,
	}, nil
}

// GSTR1Report renders one CSV row per (invoice, GST rate) for invoices
// stored within the optional bounds. To is inclusive. With nothing to
// report it returns NoGSTR1Data.
func (s *ReportService) GSTR1Report(ctx context.Context, from, to *time.Time) (string, error) {
	invoices, err := s.store.ListInvoicesWithItems(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load invoices: %w", err)
	}

	var rows [][]string
	for _, inv := range invoices {
		if len(inv.Items) == 0 || !inRange(inv.CreatedAt, from, to) {
			continue
		}
		_, breakdown := ComputeBreakdown(classifiedOf(inv.Items))

		gstin, receiver := s.businessGSTIN, ""
		number, date := inv.ID, inv.CreatedAt.Format("02-01-2006")
		if e := inv.EInvoice; e != nil {
			if e.SellerGSTIN != "" {
				gstin = e.SellerGSTIN
			}
			receiver = e.BuyerGSTIN
			if e.DocNo != "" {
				number = e.DocNo
			}
			if e.DocDate != "" {
				date = e.DocDate
			}
		}

		for _, slab := range breakdown {
			value := decimal.NewFromFloat(slab.TaxableAmount).Add(decimal.NewFromFloat(slab.TaxAmount))
			rows = append(rows, []string{
				gstin,
				receiver,
				number,
				date,
				value.StringFixed(2),
				s.placeOfSupply,
				"N",
				"Regular",
				formatRate(slab.GSTRate),
				money(slab.TaxableAmount),
				money(slab.IGST),
				money(slab.CGST),
				money(slab.SGST),
				"0.00",
			})
		}
	}

	if len(rows) == 0 {
		return NoGSTR1Data, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(gstr1Header); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write csv rows: %w", err)
	}
	return buf.String(), nil
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// PDF report layout, in points on an A4 portrait page with the origin at
// the upper left.
const (
	pdfLeft        = 40.0
	pdfTop         = 50.0
	pdfLineHeight  = 16.0
	pdfRowsPerPage = 40
)

type pdfFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type pdfTextBox struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  pdfFont    `json:"font"`
}

type pdfContent struct {
	Text []pdfTextBox `json:"text"`
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

type pdfDocument struct {
	Paper  string             `json:"paper"`
	Origin string             `json:"origin"`
	Pages  map[string]pdfPage `json:"pages"`
}

type pdfLine struct {
	cells []string
	bold  bool
	size  int
}

var pdfColumns = []float64{0, 200, 260, 340, 420, 480}

// PDFReport renders the invoice report as a PDF document.
func (s *ReportService) PDFReport(ctx context.Context, invoiceID string) ([]byte, error) {
	report, err := s.JSONReport(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	doc := buildPDFDocument(report)
	layout, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pdf layout: %w", err)
	}

	var out bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(layout), &out, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}
	return out.Bytes(), nil
}

func buildPDFDocument(r *dto.InvoiceReport) pdfDocument {
	title := cases.Title(language.English)

	lines := []pdfLine{
		{cells: []string{"GST Invoice Report"}, bold: true, size: 18},
		{cells: []string{"Invoice ID: " + r.InvoiceID}},
		{cells: []string{"File: " + r.FileName}},
		{cells: []string{"Generated: " + r.GeneratedAt}},
	}
	if e := r.EInvoice; e != nil {
		lines = append(lines,
			pdfLine{cells: []string{fmt.Sprintf("Seller GSTIN: %s  Buyer GSTIN: %s", e.SellerGSTIN, e.BuyerGSTIN)}},
			pdfLine{cells: []string{fmt.Sprintf("Document: %s dated %s  IRN: %s", e.DocNo, e.DocDate, e.IRN)}},
		)
	}
	lines = append(lines,
		pdfLine{},
		pdfLine{cells: []string{"Item", "Qty", "Unit Price", "Total", "GST", "HSN"}, bold: true},
	)
	for _, it := range r.Items {
		lines = append(lines, pdfLine{cells: []string{
			truncateRunes(title.String(it.Item), 34),
			formatRate(it.Qty),
			money(it.UnitPrice),
			money(it.Total),
			formatRate(it.GSTRate) + "%",
			it.HSNCode,
		}})
	}
	lines = append(lines,
		pdfLine{},
		pdfLine{cells: []string{"Subtotal: Rs. " + money(r.Summary.Subtotal)}},
		pdfLine{cells: []string{"Total GST: Rs. " + money(r.Summary.TotalGST)}},
		pdfLine{cells: []string{"Grand Total: Rs. " + money(r.Summary.GrandTotal)}, bold: true},
		pdfLine{},
		pdfLine{cells: []string{"GST Breakdown"}, bold: true, size: 14},
		pdfLine{cells: []string{"GST Rate", "Taxable", "CGST", "SGST", "Tax"}, bold: true},
	)
	for _, b := range r.GSTBreakdown {
		lines = append(lines, pdfLine{cells: []string{
			formatRate(b.GSTRate) + "%",
			money(b.TaxableAmount),
			money(b.CGST),
			money(b.SGST),
			money(b.TaxAmount),
		}})
	}

	doc := pdfDocument{Paper: "A4P", Origin: "UpperLeft", Pages: map[string]pdfPage{}}
	for i := 0; i < len(lines); i += pdfRowsPerPage {
		end := min(i+pdfRowsPerPage, len(lines))
		var boxes []pdfTextBox
		for row, l := range lines[i:end] {
			y := pdfTop + float64(row)*pdfLineHeight
			font := pdfFont{Name: "Helvetica", Size: 10}
			if l.bold {
				font.Name = "Helvetica-Bold"
			}
			if l.size > 0 {
				font.Size = l.size
			}
			for col, cell := range l.cells {
				if cell == "" || col >= len(pdfColumns) {
					continue
				}
				boxes = append(boxes, pdfTextBox{
					Value: cell,
					Pos:   [2]float64{pdfLeft + pdfColumns[col], y},
					Font:  font,
				})
			}
		}
		doc.Pages[strconv.Itoa(i/pdfRowsPerPage+1)] = pdfPage{Content: pdfContent{Text: boxes}}
	}
	return doc
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
