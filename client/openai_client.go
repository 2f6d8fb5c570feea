package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient talks to the chat completions API.
type OpenAIClient struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 120 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   10,
	}

	return &OpenAIClient{
		apiKey:  strings.TrimSpace(apiKey),
		model:   strings.TrimSpace(model),
		baseURL: defaultOpenAIBaseURL,
		httpc:   &http.Client{Transport: tr},
	}
}

// WithBaseURL points the client at another API root.
func (c *OpenAIClient) WithBaseURL(u string) *OpenAIClient {
	if u != "" {
		c.baseURL = strings.TrimRight(u, "/")
	}
	return c
}

func (c *OpenAIClient) WithHTTPClient(h *http.Client) *OpenAIClient {
	if h != nil {
		c.httpc = h
	}
	return c
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Available() bool { return c.apiKey != "" }

// Enhance asks the model to repair OCR errors in the raw text.
func (c *OpenAIClient) Enhance(ctx context.Context, text string) (string, error) {
	out, err := c.chat(ctx, fmt.Sprintf(enhancePrompt, text), false)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("openai enhance: empty output")
	}
	return out, nil
}

// ExtractStructured asks the model for the invoice line items.
func (c *OpenAIClient) ExtractStructured(ctx context.Context, text string) ([]dto.CandidateItem, error) {
	out, err := c.chat(ctx, fmt.Sprintf(extractPrompt, text), true)
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(out)
	if err != nil {
		return nil, fmt.Errorf("openai extract: %w", err)
	}
	return items, nil
}

// SuggestHSNCodes asks for an HSN code and rate for every description.
func (c *OpenAIClient) SuggestHSNCodes(ctx context.Context, descriptions []string) (map[string]dto.HsnSuggestion, error) {
	prompt, err := buildSuggestPrompt(descriptions)
	if err != nil {
		return nil, err
	}
	out, err := c.chat(ctx, prompt, true)
	if err != nil {
		return nil, err
	}
	suggestions, err := decodeSuggestions(out)
	if err != nil {
		return nil, fmt.Errorf("openai suggest: %w", err)
	}
	return suggestions, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) chat(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if c.apiKey == "" {
		return "", dto.ErrEnhancerUnavailable
	}

	body := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	if jsonMode {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read openai response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai %d: %s", resp.StatusCode, truncate(raw, 512))
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", fmt.Errorf("openai: bad response body: %w", err)
	}
	if len(cr.Choices) == 0 {
		log.Printf("OpenAI returned no choices: %s", truncate(raw, 256))
		return "", fmt.Errorf("openai: no choices in response")
	}
	return cr.Choices[0].Message.Content, nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
