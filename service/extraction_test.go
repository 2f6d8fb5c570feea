package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const widgetText = "Widget 3 10.00 30.00\nBiscuits 2 25.00 50.00\nTotal 80.00"

func TestExtractItemsWithoutEnhancer(t *testing.T) {
	p := newTestPipeline(nil)

	items := p.ExtractItems(context.Background(), widgetText)
	require.Len(t, items, 2)
	assert.Equal(t, dto.CandidateItem{Item: "Widget", Qty: 3, UnitPrice: 10, Total: 30}, items[0])
	assert.Equal(t, dto.CandidateItem{Item: "Biscuits", Qty: 2, UnitPrice: 25, Total: 50}, items[1])
}

func TestExtractItemsEmptyText(t *testing.T) {
	p := newTestPipeline(&fakeEnhancer{available: true})

	items := p.ExtractItems(context.Background(), "  \n\t ")
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestExtractItemsUnavailableEnhancerMatchesHeuristics(t *testing.T) {
	withNoop := newTestPipeline(NoopEnhancer{})
	withUnavailable := newTestPipeline(&fakeEnhancer{
		available: false,
		items:     []dto.CandidateItem{{Item: "Ignored", Total: 1}},
	})

	assert.Equal(t,
		withNoop.ExtractItems(context.Background(), widgetText),
		withUnavailable.ExtractItems(context.Background(), widgetText),
	)
}

func TestExtractItemsPrefersStructuredResult(t *testing.T) {
	enh := &fakeEnhancer{
		available: true,
		enhanced:  "cleaned text",
		items: []dto.CandidateItem{
			{Item: "Tea", Qty: 2, UnitPrice: 120, Total: 240},
			{Item: "Sugar", Total: 45},
		},
	}
	p := newTestPipeline(enh)

	items := p.ExtractItems(context.Background(), widgetText)
	require.Len(t, items, 2)
	assert.Equal(t, "Tea", items[0].Item)
	assert.Equal(t, dto.CandidateItem{Item: "Sugar", Qty: 1, UnitPrice: 45, Total: 45}, items[1])
	assert.Equal(t, "cleaned text", enh.extractedOn)
}

func TestExtractItemsFallsBackOnEnhancedText(t *testing.T) {
	enh := &fakeEnhancer{
		available:  true,
		enhanced:   "Rice 5 60.00 300.00",
		extractErr: errors.New("model down"),
	}
	p := newTestPipeline(enh)

	items := p.ExtractItems(context.Background(), "R1ce 5 6O.OO 3OO.OO")
	require.Len(t, items, 1)
	assert.Equal(t, dto.CandidateItem{Item: "Rice", Qty: 5, UnitPrice: 60, Total: 300}, items[0])
}

func TestExtractItemsEnhanceFailureKeepsRawText(t *testing.T) {
	enh := &fakeEnhancer{available: true, enhanceErr: errors.New("timeout")}
	p := newTestPipeline(enh)

	items := p.ExtractItems(context.Background(), widgetText)
	assert.Len(t, items, 2)
	assert.Equal(t, widgetText, enh.extractedOn)
}

func TestExtractItemsDiscardsInvalidStructuredItems(t *testing.T) {
	enh := &fakeEnhancer{
		available: true,
		items: []dto.CandidateItem{
			{Item: "  ", Total: 10},
			{Item: "Negative", Qty: 1, Total: -5},
			{Item: "Nothing", Qty: 2},
			{Item: "Broken", Total: math.NaN()},
		},
	}
	p := newTestPipeline(enh)

	// nothing usable from the model, so the parser runs
	items := p.ExtractItems(context.Background(), widgetText)
	require.Len(t, items, 2)
	assert.Equal(t, "Widget", items[0].Item)
}

func TestCompleteItemDerivesMissingValues(t *testing.T) {
	it, ok := completeItem(dto.CandidateItem{Item: " Pen ", Qty: 4, UnitPrice: 12.5}, 1)
	require.True(t, ok)
	assert.Equal(t, dto.CandidateItem{Item: "Pen", Qty: 4, UnitPrice: 12.5, Total: 50}, it)

	it, ok = completeItem(dto.CandidateItem{Item: "Pen", Qty: 4, Total: 50}, 1)
	require.True(t, ok)
	assert.Equal(t, 12.5, it.UnitPrice)

	// qty follows from unit price and total
	it, ok = completeItem(dto.CandidateItem{Item: "Pen", UnitPrice: 10, Total: 30}, 1)
	require.True(t, ok)
	assert.Equal(t, dto.CandidateItem{Item: "Pen", Qty: 3, UnitPrice: 10, Total: 30}, it)

	it, ok = completeItem(dto.CandidateItem{Item: "Pen", Total: 45}, 1)
	require.True(t, ok)
	assert.Equal(t, dto.CandidateItem{Item: "Pen", Qty: 1, UnitPrice: 45, Total: 45}, it)
}

func TestCompleteItemChecksConsistency(t *testing.T) {
	_, ok := completeItem(dto.CandidateItem{Item: "Pen", Qty: 3, UnitPrice: 10, Total: 99}, 1)
	assert.False(t, ok)

	it, ok := completeItem(dto.CandidateItem{Item: "Pen", Qty: 3, UnitPrice: 10, Total: 30.5}, 1)
	require.True(t, ok)
	assert.Equal(t, 30.5, it.Total)
}

func TestExtractItemsDropsInconsistentStructuredItems(t *testing.T) {
	enh := &fakeEnhancer{
		available: true,
		items: []dto.CandidateItem{
			{Item: "Pen", Qty: 3, UnitPrice: 10, Total: 99},
			{Item: "Tea", UnitPrice: 60, Total: 120},
		},
	}
	p := newTestPipeline(enh)

	items := p.ExtractItems(context.Background(), widgetText)
	require.Len(t, items, 1)
	assert.Equal(t, dto.CandidateItem{Item: "Tea", Qty: 2, UnitPrice: 60, Total: 120}, items[0])
}

func TestClassifyItemsThroughPipeline(t *testing.T) {
	p := newTestPipeline(nil)

	out := p.ClassifyItems(context.Background(), []dto.CandidateItem{
		{Item: "Biscuits", Qty: 1, UnitPrice: 50, Total: 50},
		{Item: "Widget", Qty: 1, UnitPrice: 30, Total: 30},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "1905", out[0].HSNCode)
	assert.Equal(t, 18.0, out[0].GSTRate)
	assert.Equal(t, dto.SourceHSNMatch, out[0].ClassifiedBy)
	assert.Equal(t, "", out[1].HSNCode)
	assert.Equal(t, 18.0, out[1].GSTRate)
	assert.Equal(t, dto.SourceDefault, out[1].ClassifiedBy)
}
