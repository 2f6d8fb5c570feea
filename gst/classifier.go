package gst

import (
	"context"
	"log"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
)

const DefaultGSTRate = 18

// Suggester proposes HSN codes and rates for a batch of item descriptions
// in a single call. The returned map is keyed by description.
type Suggester interface {
	Available() bool
	SuggestHSNCodes(ctx context.Context, descriptions []string) (map[string]dto.HsnSuggestion, error)
}

// NoopSuggester never suggests anything.
type NoopSuggester struct{}

func (NoopSuggester) Available() bool { return false }

func (NoopSuggester) SuggestHSNCodes(context.Context, []string) (map[string]dto.HsnSuggestion, error) {
	return nil, dto.ErrEnhancerUnavailable
}

type classification struct {
	hsnCode string
	gstRate float64
	source  string
}

// classifyStep is one tier of the cascade.
type classifyStep func(description string) (classification, bool)

// Classifier assigns an HSN code and GST slab to every item. Per item the
// first successful tier wins: named product, HSN match, category, default.
type Classifier struct {
	matcher     *HsnMatcher
	categories  *CategoryClassifier
	suggester   Suggester
	defaultRate float64
	steps       []classifyStep
}

func NewClassifier(matcher *HsnMatcher, categories *CategoryClassifier, suggester Suggester, defaultRate float64) *Classifier {
	if suggester == nil {
		suggester = NoopSuggester{}
	}
	c := &Classifier{
		matcher:     matcher,
		categories:  categories,
		suggester:   suggester,
		defaultRate: defaultRate,
	}
	c.steps = []classifyStep{
		c.specificItemStep,
		c.hsnMatchStep,
		c.categoryStep,
		c.defaultStep,
	}
	return c
}

// ClassifyItems returns one classified item per input, in input order.
// When a suggester is available its answers take precedence for the items
// it covers; if it fails every item goes through the local cascade.
func (c *Classifier) ClassifyItems(ctx context.Context, items []dto.CandidateItem) []dto.ClassifiedItem {
	out := make([]dto.ClassifiedItem, 0, len(items))
	if len(items) == 0 {
		return out
	}

	suggestions := c.suggest(ctx, items)

	for _, item := range items {
		if s, ok := suggestions[item.Item]; ok {
			rate := c.defaultRate
			if s.GSTRate != nil {
				rate = *s.GSTRate
			}
			out = append(out, dto.ClassifiedItem{
				CandidateItem: item,
				HSNCode:       s.HSNCode,
				GSTRate:       rate,
				ClassifiedBy:  dto.SourceAISuggestion,
			})
			continue
		}
		out = append(out, c.ClassifyItem(item))
	}
	return out
}

// ClassifyItem runs the local cascade for a single item.
func (c *Classifier) ClassifyItem(item dto.CandidateItem) dto.ClassifiedItem {
	for _, step := range c.steps {
		if cl, ok := step(item.Item); ok {
			return dto.ClassifiedItem{
				CandidateItem: item,
				HSNCode:       cl.hsnCode,
				GSTRate:       cl.gstRate,
				ClassifiedBy:  cl.source,
			}
		}
	}
	// defaultStep always succeeds
	return dto.ClassifiedItem{CandidateItem: item, GSTRate: c.defaultRate, ClassifiedBy: dto.SourceDefault}
}

func (c *Classifier) suggest(ctx context.Context, items []dto.CandidateItem) map[string]dto.HsnSuggestion {
	if !c.suggester.Available() {
		return nil
	}

	seen := make(map[string]bool, len(items))
	descriptions := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it.Item] {
			seen[it.Item] = true
			descriptions = append(descriptions, it.Item)
		}
	}

	suggestions, err := c.suggester.SuggestHSNCodes(ctx, descriptions)
	if err != nil {
		log.Printf("HSN suggestion failed, using local classification: %v", err)
		return nil
	}
	log.Printf("Received HSN suggestions for %d of %d items", len(suggestions), len(descriptions))
	return suggestions
}

func (c *Classifier) specificItemStep(description string) (classification, bool) {
	it, ok := lookupSpecificItem(description)
	if !ok {
		return classification{}, false
	}
	return classification{hsnCode: it.hsnCode, gstRate: it.gstRate, source: dto.SourceSpecificItem}, true
}

func (c *Classifier) hsnMatchStep(description string) (classification, bool) {
	code, rate, ok := c.matcher.Match(description)
	if !ok {
		return classification{}, false
	}
	return classification{hsnCode: code, gstRate: rate, source: dto.SourceHSNMatch}, true
}

func (c *Classifier) categoryStep(description string) (classification, bool) {
	cat, ok := c.categories.Classify(description)
	if !ok {
		return classification{}, false
	}
	return classification{gstRate: cat.GSTRate, source: dto.SourceCategory}, true
}

func (c *Classifier) defaultStep(string) (classification, bool) {
	return classification{gstRate: c.defaultRate, source: dto.SourceDefault}, true
}
