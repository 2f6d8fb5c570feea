package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aashish23092/gst-invoice-ocr/client"
	"github.com/disintegration/imaging"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type PDFProcessor interface {
	ExtractText(ctx context.Context, pdfData []byte) (string, error)
	// ExtractPageImages returns the embedded page images as PNG bytes.
	ExtractPageImages(ctx context.Context, pdfData []byte) ([][]byte, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// ExtractText reads the text layer row by row. Words separated by a wide
// horizontal gap keep a double space so table columns stay apart.
func (p *pdfProcessor) ExtractText(ctx context.Context, pdfData []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		rows, err := p.GetTextByRow()
		if err != nil {
			log.Printf("Failed to read text rows on page %d: %v", pageIndex, err)
			continue
		}
		if pageIndex > 1 && textBuilder.Len() > 0 {
			textBuilder.WriteString("\n")
		}
		for _, row := range rows {
			textBuilder.WriteString(joinRow(row.Content))
			textBuilder.WriteString("\n")
		}
	}
	return textBuilder.String(), nil
}

func joinRow(words pdf.TextHorizontal) string {
	var b strings.Builder
	for i, word := range words {
		if i > 0 {
			prev := words[i-1]
			gap := word.X - (prev.X + prev.W)
			size := word.FontSize
			if size <= 0 {
				size = 10
			}
			switch {
			case gap > 2*size:
				b.WriteString("  ")
			case gap > 0.2*size:
				b.WriteString(" ")
			}
		}
		b.WriteString(word.S)
	}
	return b.String()
}

func (p *pdfProcessor) ExtractPageImages(ctx context.Context, pdfData []byte) ([][]byte, error) {
	tempDir, err := os.MkdirTemp("", "pdf_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile, err := os.CreateTemp("", "invoice-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(pdfData); err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	conf := model.NewDefaultConfiguration()

	// nil selects every page
	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	files, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	var images [][]byte
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if file.IsDir() {
			continue
		}

		img, err := imaging.Open(filepath.Join(tempDir, file.Name()), imaging.AutoOrientation(true))
		if err != nil {
			log.Printf("Skipping unreadable image %s: %v", file.Name(), err)
			continue
		}
		encoded, err := client.EncodePNG(img)
		if err != nil {
			log.Printf("Skipping image %s: %v", file.Name(), err)
			continue
		}
		images = append(images, encoded)
	}

	return images, nil
}
