package service

import (
	"context"
	"log"
	"math"
	"strings"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/Aashish23092/gst-invoice-ocr/gst"
	"github.com/Aashish23092/gst-invoice-ocr/utils"
)

// ExtractionPipeline turns invoice text into classified line items.
type ExtractionPipeline struct {
	parser     *utils.LineItemParser
	enhancer   Enhancer
	classifier *gst.Classifier
}

func NewExtractionPipeline(parser *utils.LineItemParser, enhancer Enhancer, classifier *gst.Classifier) *ExtractionPipeline {
	if enhancer == nil {
		enhancer = NoopEnhancer{}
	}
	return &ExtractionPipeline{
		parser:     parser,
		enhancer:   enhancer,
		classifier: classifier,
	}
}

// ExtractItems never fails. When an enhancer is available it first
// repairs the text, then gets a chance to extract items itself; anything
// it cannot deliver falls through to the line parser.
func (p *ExtractionPipeline) ExtractItems(ctx context.Context, text string) []dto.CandidateItem {
	if strings.TrimSpace(text) == "" {
		return []dto.CandidateItem{}
	}

	working := text
	if p.enhancer.Available() {
		enhanced, err := p.enhancer.Enhance(ctx, text)
		switch {
		case err != nil:
			log.Printf("OCR text enhancement failed: %v", err)
		case strings.TrimSpace(enhanced) != "":
			log.Println("OCR text enhanced with AI")
			working = enhanced
		}

		aiItems, err := p.enhancer.ExtractStructured(ctx, working)
		if err != nil {
			log.Printf("AI-based extraction failed: %v", err)
		} else if items := completeItems(aiItems, p.parser.Tolerance()); len(items) > 0 {
			log.Printf("AI successfully extracted %d items", len(items))
			return items
		}
	}

	return p.parser.Extract(working)
}

// ClassifyItems assigns HSN codes and GST slabs.
func (p *ExtractionPipeline) ClassifyItems(ctx context.Context, items []dto.CandidateItem) []dto.ClassifiedItem {
	return p.classifier.ClassifyItems(ctx, items)
}

// completeItems drops model items that cannot be trusted and fills in the
// values the model left out.
func completeItems(items []dto.CandidateItem, tolerance float64) []dto.CandidateItem {
	out := make([]dto.CandidateItem, 0, len(items))
	for _, it := range items {
		if c, ok := completeItem(it, tolerance); ok {
			out = append(out, c)
		} else {
			log.Printf("Discarding AI item %q", it.Item)
		}
	}
	return out
}

// completeItem derives a missing value from the other two. Qty defaults to
// 1 only when a single amount is known. Fully specified items must satisfy
// |qty*unit_price - total| <= tolerance.
func completeItem(it dto.CandidateItem, tolerance float64) (dto.CandidateItem, bool) {
	it.Item = strings.TrimSpace(it.Item)
	if it.Item == "" {
		return it, false
	}
	for _, v := range []float64{it.Qty, it.UnitPrice, it.Total} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return it, false
		}
	}
	if it.Total == 0 && it.UnitPrice == 0 {
		return it, false
	}

	switch {
	case it.Qty > 0 && it.UnitPrice > 0 && it.Total > 0:
		if math.Abs(it.Qty*it.UnitPrice-it.Total) > tolerance {
			return it, false
		}
	case it.Qty == 0 && it.UnitPrice > 0 && it.Total > 0:
		it.Qty = it.Total / it.UnitPrice
	default:
		if it.Qty == 0 {
			it.Qty = 1
		}
		if it.Total == 0 {
			it.Total = math.Round(it.Qty*it.UnitPrice*100) / 100
		}
		if it.UnitPrice == 0 {
			it.UnitPrice = it.Total / it.Qty
		}
	}
	return it, true
}
