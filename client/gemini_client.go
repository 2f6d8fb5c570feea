package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiAttempts = 3

// GeminiClient uses the Gemini API for the same jobs as OpenAIClient.
type GeminiClient struct {
	apiKey string
	model  string
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
	}
}

func (g *GeminiClient) Name() string { return "gemini" }

func (g *GeminiClient) Available() bool { return g.apiKey != "" }

func (g *GeminiClient) Enhance(ctx context.Context, text string) (string, error) {
	out, err := g.generate(ctx, fmt.Sprintf(enhancePrompt, text), false)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("gemini enhance: empty output")
	}
	return out, nil
}

func (g *GeminiClient) ExtractStructured(ctx context.Context, text string) ([]dto.CandidateItem, error) {
	out, err := g.generate(ctx, fmt.Sprintf(extractPrompt, text), true)
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(out)
	if err != nil {
		return nil, fmt.Errorf("gemini extract: %w", err)
	}
	return items, nil
}

func (g *GeminiClient) SuggestHSNCodes(ctx context.Context, descriptions []string) (map[string]dto.HsnSuggestion, error) {
	prompt, err := buildSuggestPrompt(descriptions)
	if err != nil {
		return nil, err
	}
	out, err := g.generate(ctx, prompt, true)
	if err != nil {
		return nil, err
	}
	suggestions, err := decodeSuggestions(out)
	if err != nil {
		return nil, fmt.Errorf("gemini suggest: %w", err)
	}
	return suggestions, nil
}

// generate sends one prompt, retrying transient failures with a linear
// backoff.
func (g *GeminiClient) generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if g.apiKey == "" {
		return "", dto.ErrEnhancerUnavailable
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("gemini: failed to create client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{Temperature: ptrFloat32(0)}
	if jsonMode {
		m.GenerationConfig.ResponseMIMEType = "application/json"
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text("You process Indian GST invoices. Answer only with what is asked.")},
	}

	var lastErr error
	for attempt := 1; attempt <= geminiAttempts; attempt++ {
		resp, err := m.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			}
			continue
		}
		txt := firstText(resp)
		if txt == "" {
			return "", fmt.Errorf("gemini: empty response")
		}
		return txt, nil
	}
	return "", fmt.Errorf("gemini: %d attempts failed: %w", geminiAttempts, lastErr)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
