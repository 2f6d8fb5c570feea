package dto

import (
	"errors"
	"math"
	"mime/multipart"
	"strings"
)

// ProcessInvoiceRequest represents a single invoice upload
type ProcessInvoiceRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"`
}

// BatchRequest represents a multi-invoice upload
type BatchRequest struct {
	Files []*multipart.FileHeader `form:"files[]" binding:"required"`
}

// Validate performs basic validation on the request
func (r *BatchRequest) Validate() error {
	if len(r.Files) == 0 {
		return errors.New("at least one file is required")
	}
	for _, f := range r.Files {
		if _, err := DetectFileType(f.Filename); err != nil {
			return err
		}
	}
	return nil
}

// ExtractRequest carries raw invoice text for line-item extraction.
type ExtractRequest struct {
	Text string `json:"text"`
}

// ClassifyRequest carries already-extracted items for classification.
type ClassifyRequest struct {
	Items []CandidateItem `json:"items" binding:"required"`
}

func (r *ClassifyRequest) Validate() error {
	if len(r.Items) == 0 {
		return errors.New("items are required")
	}
	for _, it := range r.Items {
		if strings.TrimSpace(it.Item) == "" {
			return errors.New("item description is required")
		}
	}
	return nil
}

// UpdateItemRequest is a manual correction of a stored item. Nil fields
// are left unchanged.
type UpdateItemRequest struct {
	Item      *string  `json:"item"`
	Qty       *float64 `json:"qty"`
	UnitPrice *float64 `json:"unit_price"`
	Total     *float64 `json:"total"`
	HSNCode   *string  `json:"hsn_code"`
	GSTRate   *float64 `json:"gst_rate"`
}

func (r *UpdateItemRequest) Validate() error {
	if r.Item != nil && strings.TrimSpace(*r.Item) == "" {
		return errors.New("item description cannot be empty")
	}
	for _, v := range []*float64{r.Qty, r.UnitPrice, r.Total, r.GSTRate} {
		if v != nil && (*v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return errors.New("numeric fields must be non-negative numbers")
		}
	}
	return nil
}
