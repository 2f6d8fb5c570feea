package dto

// EInvoiceData holds the fields carried in the signed QR code printed on
// GST e-invoices.
type EInvoiceData struct {
	SellerGSTIN string  `json:"seller_gstin"`
	BuyerGSTIN  string  `json:"buyer_gstin"`
	DocNo       string  `json:"doc_no"`
	DocType     string  `json:"doc_type,omitempty"`
	DocDate     string  `json:"doc_date"` // "DD/MM/YYYY"
	TotalValue  float64 `json:"total_value"`
	ItemCount   int     `json:"item_count"`
	MainHSNCode string  `json:"main_hsn_code"`
	IRN         string  `json:"irn"`
	IRNDate     string  `json:"irn_date,omitempty"`
}
