package service

import (
	"context"
	"log"
	"strings"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
)

// OCREngine turns an image into text plus a 0-100 confidence.
type OCREngine interface {
	Name() string
	ExtractText(ctx context.Context, imageData []byte) (string, float64, error)
}

const (
	minEngineTextLen    = 5
	minTextLayerLen     = 20
	minTextLayerScore   = 20.0
	lowQualityThreshold = 60.0
)

// DocumentReader gets text out of an uploaded invoice. Images go through
// the OCR engines in order until one returns text; PDFs use their text
// layer and fall back to OCR of the embedded page images.
type DocumentReader struct {
	engines []OCREngine
	pdf     PDFProcessor
}

func NewDocumentReader(pdf PDFProcessor, engines ...OCREngine) *DocumentReader {
	return &DocumentReader{engines: engines, pdf: pdf}
}

// Read never fails on OCR problems; they are logged and reported through
// Quality.Issues and an empty text.
func (r *DocumentReader) Read(ctx context.Context, data []byte, fileType dto.FileType) (string, dto.DocumentQuality) {
	quality := dto.DocumentQuality{Issues: []string{}}

	if fileType == dto.FileTypePDF {
		return r.readPDF(ctx, data, quality)
	}

	text, conf, engine := r.ocrImage(ctx, data)
	quality.Source = "ocr"
	quality.Engine = engine
	if strings.TrimSpace(text) == "" {
		quality.Issues = append(quality.Issues, "ocr_failed")
		return "", quality
	}
	r.score(&quality, text, conf)
	return text, quality
}

func (r *DocumentReader) readPDF(ctx context.Context, data []byte, quality dto.DocumentQuality) (string, dto.DocumentQuality) {
	text, err := r.pdf.ExtractText(ctx, data)
	if err != nil {
		log.Printf("PDF text extraction failed: %v", err)
		quality.Issues = append(quality.Issues, "pdf_text_extraction_failed")
	}

	textScore := evaluateTextQuality(text)
	if len(strings.TrimSpace(text)) >= minTextLayerLen && textScore >= minTextLayerScore {
		quality.Source = "pdf_text"
		quality.TextScore = textScore
		quality.OcrConfidence = 100
		quality.FinalScore = (100 + textScore) / 2
		return text, quality
	}

	log.Printf("PDF seems to be scanned or has minimal text, attempting image-based OCR")
	quality.Source = "ocr"

	images, err := r.pdf.ExtractPageImages(ctx, data)
	if err != nil || len(images) == 0 {
		log.Printf("Failed to extract images from PDF: %v", err)
		quality.Issues = append(quality.Issues, "pdf_image_extraction_failed")
		return "", quality
	}

	var pages []string
	var totalConfidence float64
	for i, img := range images {
		pageText, conf, engine := r.ocrImage(ctx, img)
		if strings.TrimSpace(pageText) == "" {
			log.Printf("OCR produced no text for page image %d", i+1)
			continue
		}
		quality.Engine = engine
		pages = append(pages, pageText)
		totalConfidence += conf
	}

	if len(pages) == 0 {
		quality.Issues = append(quality.Issues, "scanned_pdf_ocr_failed")
		return "", quality
	}

	text = strings.Join(pages, "\n\n")
	r.score(&quality, text, totalConfidence/float64(len(pages)))
	return text, quality
}

// ocrImage tries each engine in turn and returns the first usable text.
func (r *DocumentReader) ocrImage(ctx context.Context, data []byte) (string, float64, string) {
	for _, engine := range r.engines {
		if ctx.Err() != nil {
			return "", 0, ""
		}
		text, conf, err := engine.ExtractText(ctx, data)
		if err != nil {
			log.Printf("%s OCR failed: %v", engine.Name(), err)
			continue
		}
		if len(strings.TrimSpace(text)) <= minEngineTextLen {
			log.Printf("%s OCR returned too little text, trying next engine", engine.Name())
			continue
		}
		return text, conf, engine.Name()
	}
	return "", 0, ""
}

func (r *DocumentReader) score(q *dto.DocumentQuality, text string, conf float64) {
	q.OcrConfidence = conf
	q.TextScore = evaluateTextQuality(text)
	q.FinalScore = (q.OcrConfidence + q.TextScore) / 2
	if q.FinalScore < lowQualityThreshold {
		q.Issues = append(q.Issues, "low_quality_document")
	}
}

var invoiceKeywords = []string{
	"invoice", "gst", "gstin", "total", "qty",
	"rate", "amount", "hsn", "tax",
}

// evaluateTextQuality scores extracted text from 0-100 on length and the
// presence of invoice vocabulary.
func evaluateTextQuality(text string) float64 {
	if text == "" {
		return 0.0
	}

	score := 0.0

	// Length score (max 40 points)
	textLen := len(strings.TrimSpace(text))
	if textLen > 500 {
		score += 40.0
	} else if textLen > 100 {
		score += 20.0
	} else if textLen > 20 {
		score += 10.0
	}

	textLower := strings.ToLower(text)
	keywordCount := 0
	for _, keyword := range invoiceKeywords {
		if strings.Contains(textLower, keyword) {
			keywordCount++
		}
	}

	score += float64(keywordCount) * 6.67

	if score > 100.0 {
		score = 100.0
	}

	return score
}
