package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
)

// InvoiceStore is the persistence the services need. Both the gorm and
// the in-memory repositories satisfy it.
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv *dto.Invoice, items []dto.ClassifiedItem) (*dto.Invoice, error)
	GetInvoice(ctx context.Context, id string) (*dto.Invoice, error)
	ListInvoices(ctx context.Context) ([]dto.Invoice, error)
	ListInvoicesWithItems(ctx context.Context) ([]dto.Invoice, error)
	ItemsByInvoice(ctx context.Context, invoiceID string) ([]dto.StoredItem, error)
	AllItems(ctx context.Context) ([]dto.StoredItem, error)
	UpdateItem(ctx context.Context, id string, req dto.UpdateItemRequest) (*dto.StoredItem, error)
	ListGstSlabs(ctx context.Context) ([]dto.HsnEntry, error)
}

type InvoiceService struct {
	reader   *DocumentReader
	qr       QRReader
	pipeline *ExtractionPipeline
	store    InvoiceStore
	now      func() time.Time
}

func NewInvoiceService(
	reader *DocumentReader,
	qr QRReader,
	pipeline *ExtractionPipeline,
	store InvoiceStore,
) *InvoiceService {
	return &InvoiceService{
		reader:   reader,
		qr:       qr,
		pipeline: pipeline,
		store:    store,
		now:      time.Now,
	}
}

// ProcessInvoice reads an uploaded file and runs it through ProcessDocument.
func (s *InvoiceService) ProcessInvoice(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.ProcessInvoiceResponse, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", fileHeader.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileHeader.Filename, err)
	}

	return s.ProcessDocument(ctx, fileHeader.Filename, data)
}

// ProcessDocument extracts, classifies and stores the line items of one
// invoice. It fails with dto.ErrNoText or dto.ErrNoItems when the document
// yields nothing usable.
func (s *InvoiceService) ProcessDocument(ctx context.Context, filename string, data []byte) (*dto.ProcessInvoiceResponse, error) {
	fileType, err := dto.DetectFileType(filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	log.Printf("Processing invoice %s (%s, %d bytes)", filename, fileType, len(data))

	text, quality := s.reader.Read(ctx, data, fileType)
	if strings.TrimSpace(text) == "" {
		return nil, dto.ErrNoText
	}

	var eInvoice *dto.EInvoiceData
	if fileType == dto.FileTypeImage && s.qr != nil {
		eInvoice, err = s.qr.ReadEInvoice(data)
		if err != nil {
			log.Printf("No e-invoice QR found in %s: %v", filename, err)
			eInvoice = nil
		}
	}

	candidates := s.pipeline.ExtractItems(ctx, text)
	if len(candidates) == 0 {
		return nil, dto.ErrNoItems
	}
	items := s.pipeline.ClassifyItems(ctx, candidates)

	inv, err := s.store.CreateInvoice(ctx, &dto.Invoice{
		FileName:  filename,
		FileType:  string(fileType),
		RawText:   text,
		EInvoice:  eInvoice,
		CreatedAt: s.now(),
	}, items)
	if err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	summary, breakdown := ComputeBreakdown(items)
	log.Printf("Invoice %s stored with %d items", inv.ID, len(items))

	return &dto.ProcessInvoiceResponse{
		InvoiceID:    inv.ID,
		FileName:     filename,
		Items:        items,
		Summary:      summary,
		GSTBreakdown: breakdown,
		EInvoice:     eInvoice,
		Quality:      quality,
		ProcessedAt:  inv.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ExtractItems runs line-item extraction on raw text without storing it.
func (s *InvoiceService) ExtractItems(ctx context.Context, text string) []dto.CandidateItem {
	return s.pipeline.ExtractItems(ctx, text)
}

// ClassifyItems classifies caller-supplied items without storing them.
func (s *InvoiceService) ClassifyItems(ctx context.Context, items []dto.CandidateItem) []dto.ClassifiedItem {
	return s.pipeline.ClassifyItems(ctx, items)
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*dto.Invoice, error) {
	return s.store.GetInvoice(ctx, id)
}

func (s *InvoiceService) ListInvoices(ctx context.Context) ([]dto.Invoice, error) {
	return s.store.ListInvoices(ctx)
}

func (s *InvoiceService) InvoiceItems(ctx context.Context, invoiceID string) ([]dto.StoredItem, error) {
	if _, err := s.store.GetInvoice(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.store.ItemsByInvoice(ctx, invoiceID)
}

func (s *InvoiceService) AllItems(ctx context.Context) ([]dto.StoredItem, error) {
	return s.store.AllItems(ctx)
}

func (s *InvoiceService) UpdateItem(ctx context.Context, id string, req dto.UpdateItemRequest) (*dto.StoredItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateItem(ctx, id, req)
}

func (s *InvoiceService) ListGstSlabs(ctx context.Context) ([]dto.HsnEntry, error) {
	return s.store.ListGstSlabs(ctx)
}
