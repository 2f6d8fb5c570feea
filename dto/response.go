package dto

import "errors"

// Custom errors
var (
	ErrNoText              = errors.New("no text could be extracted from the invoice")
	ErrNoItems             = errors.New("could not identify item details in the invoice")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrItemNotFound        = errors.New("item not found")
	ErrUnsupportedFile     = errors.New("unsupported file type")
	ErrEnhancerUnavailable = errors.New("enhancer not available")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SlabBreakdown is the tax due for one GST rate across an invoice.
type SlabBreakdown struct {
	GSTRate       float64 `json:"gst_rate"`
	ItemCount     int     `json:"item_count"`
	TaxableAmount float64 `json:"taxable_amount"`
	CGST          float64 `json:"cgst"`
	SGST          float64 `json:"sgst"`
	IGST          float64 `json:"igst"`
	TaxAmount     float64 `json:"tax_amount"`
}

// InvoiceSummary totals an invoice across all slabs.
type InvoiceSummary struct {
	Subtotal   float64 `json:"subtotal"`
	TotalGST   float64 `json:"total_gst"`
	GrandTotal float64 `json:"grand_total"`
}

// ProcessInvoiceResponse is returned after a single invoice upload.
type ProcessInvoiceResponse struct {
	InvoiceID    string           `json:"invoice_id"`
	FileName     string           `json:"file_name"`
	Items        []ClassifiedItem `json:"items"`
	Summary      InvoiceSummary   `json:"summary"`
	GSTBreakdown []SlabBreakdown  `json:"gst_breakdown"`
	EInvoice     *EInvoiceData    `json:"e_invoice,omitempty"`
	Quality      DocumentQuality  `json:"quality"`
	ProcessedAt  string           `json:"processed_at"`
}

// BatchResult is the outcome for one file in a batch upload. Exactly one
// of Result and Error is set.
type BatchResult struct {
	FileName string                  `json:"file_name"`
	Result   *ProcessInvoiceResponse `json:"result,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// BatchResponse wraps all per-file results of a batch upload.
type BatchResponse struct {
	Results   []BatchResult `json:"results"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// InvoiceReport is the JSON report for one stored invoice.
type InvoiceReport struct {
	InvoiceID    string          `json:"invoice_id"`
	FileName     string          `json:"file_name"`
	GeneratedAt  string          `json:"generated_at"`
	Items        []StoredItem    `json:"items"`
	Summary      InvoiceSummary  `json:"summary"`
	GSTBreakdown []SlabBreakdown `json:"gst_breakdown"`
	EInvoice     *EInvoiceData   `json:"e_invoice,omitempty"`
}

// SlabStat aggregates items of one GST rate across invoices.
type SlabStat struct {
	GSTRate       float64 `json:"gst_rate"`
	ItemCount     int     `json:"item_count"`
	TaxableAmount float64 `json:"taxable_amount"`
	TaxAmount     float64 `json:"tax_amount"`
}

// HSNStat aggregates items sharing an HSN code.
type HSNStat struct {
	HSNCode       string  `json:"hsn_code"`
	Description   string  `json:"description"`
	GSTRate       float64 `json:"gst_rate"`
	ItemCount     int     `json:"item_count"`
	TaxableAmount float64 `json:"taxable_amount"`
	TaxAmount     float64 `json:"tax_amount"`
}

// TrendPoint is one period of the tax time series.
type TrendPoint struct {
	Date          string  `json:"date"`
	Period        string  `json:"period"`
	InvoiceCount  int     `json:"invoice_count"`
	TaxableAmount float64 `json:"taxable_amount"`
	TaxAmount     float64 `json:"tax_amount"`
}

// StatsResponse is returned by the statistics endpoint.
type StatsResponse struct {
	InvoiceCount       int          `json:"invoice_count"`
	ItemCount          int          `json:"item_count"`
	TotalTaxable       float64      `json:"total_taxable"`
	TotalTax           float64      `json:"total_tax"`
	AvgTaxPerInvoice   float64      `json:"avg_tax_per_invoice"`
	AvgItemsPerInvoice float64      `json:"avg_items_per_invoice"`
	SlabDistribution   []SlabStat   `json:"slab_distribution"`
	TopHSNCodes        []HSNStat    `json:"top_hsn_codes"`
	Trend              []TrendPoint `json:"trend"`
	GroupBy            string       `json:"group_by"`
}
