package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"golang.org/x/sync/errgroup"
)

// InvoiceProcessor handles one uploaded invoice.
type InvoiceProcessor interface {
	ProcessInvoice(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.ProcessInvoiceResponse, error)
}

type BatchService struct {
	processor   InvoiceProcessor
	concurrency int
}

func NewBatchService(processor InvoiceProcessor, concurrency int) *BatchService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchService{processor: processor, concurrency: concurrency}
}

// ProcessBatch handles every file independently. A failing invoice is
// reported in its own result and never stops the others.
func (b *BatchService) ProcessBatch(ctx context.Context, files []*multipart.FileHeader) *dto.BatchResponse {
	log.Printf("Processing %d files", len(files))

	results := make([]dto.BatchResult, len(files))

	var g errgroup.Group
	g.SetLimit(b.concurrency)

	for i, fh := range files {
		g.Go(func() error {
			results[i].FileName = fh.Filename
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Batch item %s panicked: %v", fh.Filename, r)
					results[i].Result = nil
					results[i].Error = fmt.Sprintf("panic while processing %s: %v", fh.Filename, r)
				}
			}()
			if err := ctx.Err(); err != nil {
				results[i].Error = err.Error()
				return nil
			}

			res, err := b.processor.ProcessInvoice(ctx, fh)
			if err != nil {
				log.Printf("Batch item %s failed: %v", fh.Filename, err)
				results[i].Error = err.Error()
				return nil
			}
			results[i].Result = res
			return nil
		})
	}
	_ = g.Wait()

	resp := &dto.BatchResponse{Results: results}
	for _, r := range results {
		if r.Error != "" {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	log.Printf("Batch finished: %d succeeded, %d failed", resp.Succeeded, resp.Failed)
	return resp
}
