package service

import (
	"context"
	"errors"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/Aashish23092/gst-invoice-ocr/gst"
	"github.com/Aashish23092/gst-invoice-ocr/utils"
)

type fakeEngine struct {
	name  string
	text  string
	conf  float64
	err   error
	calls int
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) ExtractText(context.Context, []byte) (string, float64, error) {
	f.calls++
	return f.text, f.conf, f.err
}

type fakePDF struct {
	text    string
	textErr error
	images  [][]byte
	imgErr  error
}

func (f *fakePDF) ExtractText(context.Context, []byte) (string, error) {
	return f.text, f.textErr
}

func (f *fakePDF) ExtractPageImages(context.Context, []byte) ([][]byte, error) {
	return f.images, f.imgErr
}

type fakeQR struct {
	data *dto.EInvoiceData
}

func (f *fakeQR) ReadEInvoice([]byte) (*dto.EInvoiceData, error) {
	if f.data == nil {
		return nil, errors.New("no QR code")
	}
	return f.data, nil
}

type fakeEnhancer struct {
	available   bool
	enhanced    string
	enhanceErr  error
	items       []dto.CandidateItem
	extractErr  error
	extractedOn string
}

func (f *fakeEnhancer) Available() bool { return f.available }

func (f *fakeEnhancer) Enhance(_ context.Context, text string) (string, error) {
	return f.enhanced, f.enhanceErr
}

func (f *fakeEnhancer) ExtractStructured(_ context.Context, text string) ([]dto.CandidateItem, error) {
	f.extractedOn = text
	return f.items, f.extractErr
}

func newTestPipeline(enhancer Enhancer) *ExtractionPipeline {
	parser := utils.NewLineItemParser(utils.NewNormalizer(true), 1)
	table := gst.NewHsnTable(gst.FallbackEntries())
	classifier := gst.NewClassifier(
		gst.NewHsnMatcher(table, gst.DefaultMatchThreshold),
		gst.NewCategoryClassifier(),
		nil,
		gst.DefaultGSTRate,
	)
	return NewExtractionPipeline(parser, enhancer, classifier)
}
