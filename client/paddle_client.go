package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"
)

// PaddleClient calls a PaddleOCR serving endpoint over HTTP.
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
}

func NewPaddleClient(apiURL string) *PaddleClient {
	log.Printf("PaddleOCR initialized with endpoint: %s", apiURL)
	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *PaddleClient) Name() string {
	return "paddle"
}

type paddleLine struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	TextRegion [][]float64 `json:"text_region"`
}

// ExtractText sends the image to PaddleOCR and rebuilds text rows from the
// detected regions. Confidence is the mean line confidence scaled to 0-100.
func (p *PaddleClient) ExtractText(ctx context.Context, imageData []byte) (string, float64, error) {
	payload := map[string]interface{}{
		"images": []string{base64.StdEncoding.EncodeToString(imageData)},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build PaddleOCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to call PaddleOCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", 0, fmt.Errorf("PaddleOCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Results [][]paddleLine `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", 0, fmt.Errorf("failed to decode PaddleOCR response: %w", err)
	}
	if len(result.Results) == 0 || len(result.Results[0]) == 0 {
		return "", 0, nil
	}

	lines := result.Results[0]
	var totalConf float64
	for _, l := range lines {
		totalConf += l.Confidence
	}
	text := joinPaddleRows(lines)

	log.Printf("PaddleOCR HTTP API extracted %d characters", len(text))
	return text, totalConf / float64(len(lines)) * 100, nil
}

// joinPaddleRows groups detected boxes into visual rows by their vertical
// centre and joins the cells of a row with a column gap. Boxes without
// coordinates are emitted one per line in response order.
func joinPaddleRows(lines []paddleLine) string {
	type cell struct {
		text   string
		x, y   float64
		height float64
	}

	var cells []cell
	var loose []string
	for _, l := range lines {
		t := strings.TrimSpace(l.Text)
		if t == "" {
			continue
		}
		if len(l.TextRegion) < 4 {
			loose = append(loose, t)
			continue
		}
		minY, maxY := l.TextRegion[0][1], l.TextRegion[0][1]
		minX := l.TextRegion[0][0]
		for _, pt := range l.TextRegion {
			if len(pt) < 2 {
				continue
			}
			minX = min(minX, pt[0])
			minY = min(minY, pt[1])
			maxY = max(maxY, pt[1])
		}
		cells = append(cells, cell{text: t, x: minX, y: (minY + maxY) / 2, height: maxY - minY})
	}

	sort.SliceStable(cells, func(i, j int) bool { return cells[i].y < cells[j].y })

	var rows []string
	for i := 0; i < len(cells); {
		j := i + 1
		for j < len(cells) && cells[j].y-cells[i].y <= cells[i].height/2 {
			j++
		}
		row := cells[i:j]
		sort.SliceStable(row, func(a, b int) bool { return row[a].x < row[b].x })
		parts := make([]string, len(row))
		for k, c := range row {
			parts[k] = c.text
		}
		rows = append(rows, strings.Join(parts, "  "))
		i = j
	}

	return strings.Join(append(rows, loose...), "\n")
}
