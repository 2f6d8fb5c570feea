package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
)

func TestReadImageUsesFirstEngineWithText(t *testing.T) {
	paddle := &fakeEngine{name: "paddle", err: errors.New("connection refused")}
	tess := &fakeEngine{name: "tesseract", text: widgetText, conf: 88}
	r := NewDocumentReader(&fakePDF{}, paddle, tess)

	text, q := r.Read(context.Background(), []byte("img"), dto.FileTypeImage)
	assert.Equal(t, widgetText, text)
	assert.Equal(t, "tesseract", q.Engine)
	assert.Equal(t, "ocr", q.Source)
	assert.Equal(t, 88.0, q.OcrConfidence)
	assert.Equal(t, 1, paddle.calls)
}

func TestReadImageSkipsTooShortText(t *testing.T) {
	first := &fakeEngine{name: "paddle", text: "ab", conf: 99}
	second := &fakeEngine{name: "tesseract", text: widgetText, conf: 70}
	r := NewDocumentReader(&fakePDF{}, first, second)

	text, q := r.Read(context.Background(), []byte("img"), dto.FileTypeImage)
	assert.Equal(t, widgetText, text)
	assert.Equal(t, "tesseract", q.Engine)
}

func TestReadImageAllEnginesFail(t *testing.T) {
	r := NewDocumentReader(&fakePDF{}, &fakeEngine{name: "tesseract", err: errors.New("boom")})

	text, q := r.Read(context.Background(), []byte("img"), dto.FileTypeImage)
	assert.Empty(t, text)
	assert.Contains(t, q.Issues, "ocr_failed")
}

func TestReadPDFTextLayer(t *testing.T) {
	layer := "TAX INVOICE  GSTIN 27AAPFU0939F1ZV\nItem  Qty  Rate  Amount\nWidget  3  10.00  30.00\nTotal  30.00"
	engine := &fakeEngine{name: "tesseract", text: "should not be used"}
	r := NewDocumentReader(&fakePDF{text: layer}, engine)

	text, q := r.Read(context.Background(), []byte("%PDF"), dto.FileTypePDF)
	assert.Equal(t, layer, text)
	assert.Equal(t, "pdf_text", q.Source)
	assert.Equal(t, 100.0, q.OcrConfidence)
	assert.Zero(t, engine.calls)
}

func TestReadScannedPDFFallsBackToOCR(t *testing.T) {
	engine := &fakeEngine{name: "tesseract", text: widgetText, conf: 80}
	r := NewDocumentReader(&fakePDF{text: " ", images: [][]byte{[]byte("p1"), []byte("p2")}}, engine)

	text, q := r.Read(context.Background(), []byte("%PDF"), dto.FileTypePDF)
	assert.Equal(t, widgetText+"\n\n"+widgetText, text)
	assert.Equal(t, "ocr", q.Source)
	assert.Equal(t, 2, engine.calls)
	assert.Equal(t, 80.0, q.OcrConfidence)
}

func TestReadScannedPDFWithoutImages(t *testing.T) {
	r := NewDocumentReader(&fakePDF{textErr: errors.New("bad xref"), imgErr: errors.New("no images")}, &fakeEngine{name: "tesseract"})

	text, q := r.Read(context.Background(), []byte("%PDF"), dto.FileTypePDF)
	assert.Empty(t, text)
	assert.Contains(t, q.Issues, "pdf_text_extraction_failed")
	assert.Contains(t, q.Issues, "pdf_image_extraction_failed")
}

func TestEvaluateTextQuality(t *testing.T) {
	assert.Equal(t, 0.0, evaluateTextQuality(""))

	long := strings.Repeat("Tax invoice GSTIN HSN qty rate amount total ", 20)
	assert.Equal(t, 100.0, evaluateTextQuality(long))

	short := evaluateTextQuality("Widget 3 10.00 30.00 thanks")
	assert.InDelta(t, 10.0, short, 0.001)
}

func TestJoinRowKeepsColumnGaps(t *testing.T) {
	row := pdf.TextHorizontal{
		{FontSize: 10, X: 10, W: 30, S: "Widget"},
		{FontSize: 10, X: 100, W: 8, S: "3"},
		{FontSize: 10, X: 109, W: 4, S: "0"},
		{FontSize: 10, X: 116, W: 20, S: "pcs"},
	}
	assert.Equal(t, "Widget  30 pcs", joinRow(row))
}
