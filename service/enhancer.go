package service

import (
	"context"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
)

// Enhancer is an optional language-model collaborator that repairs OCR
// text and can extract line items directly.
type Enhancer interface {
	Available() bool
	Enhance(ctx context.Context, text string) (string, error)
	ExtractStructured(ctx context.Context, text string) ([]dto.CandidateItem, error)
}

// NoopEnhancer is used when no AI provider is configured.
type NoopEnhancer struct{}

func (NoopEnhancer) Available() bool { return false }

func (NoopEnhancer) Enhance(context.Context, string) (string, error) {
	return "", dto.ErrEnhancerUnavailable
}

func (NoopEnhancer) ExtractStructured(context.Context, string) ([]dto.CandidateItem, error) {
	return nil, dto.ErrEnhancerUnavailable
}
