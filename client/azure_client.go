package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
)

// AzureClient runs printed-text OCR on Azure Computer Vision.
type AzureClient struct {
	client *computervision.BaseClient
}

func NewAzureClient(endpoint, apiKey string) *AzureClient {
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)

	return &AzureClient{client: &client}
}

func (a *AzureClient) Name() string {
	return "azure"
}

// ExtractText returns the recognised lines merged into visual rows. Azure
// reports no confidence for this API, so a fixed score is returned.
func (a *AzureClient) ExtractText(ctx context.Context, imageData []byte) (string, float64, error) {
	result, err := a.client.RecognizePrintedTextInStream(
		ctx,
		true,
		io.NopCloser(bytes.NewReader(imageData)),
		computervision.OcrLanguages(computervision.En),
	)
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	return joinAzureLines(result), 80, nil
}

type azureLine struct {
	text         string
	x, y, height int
}

func joinAzureLines(result computervision.OcrResult) string {
	if result.Regions == nil {
		return ""
	}

	var lines []azureLine
	for _, region := range *result.Regions {
		if region.Lines == nil {
			continue
		}
		for _, line := range *region.Lines {
			if line.Words == nil {
				continue
			}
			var words []string
			for _, word := range *line.Words {
				if word.Text != nil {
					words = append(words, *word.Text)
				}
			}
			l := azureLine{text: strings.Join(words, " ")}
			if line.BoundingBox != nil {
				box := parseBoundingBox(*line.BoundingBox)
				if len(box) >= 4 {
					l.x, l.y, l.height = box[0], box[1], box[3]
				}
			}
			lines = append(lines, l)
		}
	}

	// Regions are column blocks; rebuild rows across them.
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y < lines[j].y })

	var rows []string
	for i := 0; i < len(lines); {
		j := i + 1
		for j < len(lines) && lines[j].y-lines[i].y <= lines[i].height/2 {
			j++
		}
		row := lines[i:j]
		sort.SliceStable(row, func(a, b int) bool { return row[a].x < row[b].x })
		parts := make([]string, len(row))
		for k, l := range row {
			parts[k] = l.text
		}
		rows = append(rows, strings.Join(parts, "  "))
		i = j
	}
	return strings.Join(rows, "\n")
}

func parseBoundingBox(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}
