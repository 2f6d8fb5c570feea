package dto

import "time"

// CandidateItem is a single line item recovered from invoice text,
// before any tax classification.
type CandidateItem struct {
	Item      string  `json:"item"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// Classification sources recorded on every ClassifiedItem
const (
	SourceAISuggestion = "ai"
	SourceSpecificItem = "specific_item"
	SourceHSNMatch     = "hsn_match"
	SourceCategory     = "category"
	SourceDefault      = "default"
	SourceManual       = "manual"
)

// ClassifiedItem is a CandidateItem annotated with its HSN code and GST slab.
// HSNCode is empty when no code could be assigned; GSTRate is always set.
type ClassifiedItem struct {
	CandidateItem
	HSNCode      string  `json:"hsn_code"`
	GSTRate      float64 `json:"gst_rate"`
	ClassifiedBy string  `json:"classified_by"`
}

// HsnEntry is one row of the HSN reference table.
type HsnEntry struct {
	HSNCode     string  `json:"hsn_code"`
	Description string  `json:"description"`
	GSTRate     float64 `json:"gst_rate"`
}

// HsnSuggestion is an externally suggested HSN code and rate for one
// item description. A nil GSTRate means the suggestion carried no rate.
type HsnSuggestion struct {
	HSNCode string   `json:"hsn_code"`
	GSTRate *float64 `json:"gst_rate"`
}

// Invoice is a processed invoice as stored.
type Invoice struct {
	ID        string        `json:"id"`
	FileName  string        `json:"file_name"`
	FileType  string        `json:"file_type"`
	RawText   string        `json:"raw_text,omitempty"`
	EInvoice  *EInvoiceData `json:"e_invoice,omitempty"`
	Items     []StoredItem  `json:"items,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// StoredItem is a classified item as stored against an invoice.
type StoredItem struct {
	ID        string `json:"id"`
	InvoiceID string `json:"invoice_id"`
	ClassifiedItem
	CreatedAt time.Time `json:"created_at"`
}
