package client

import (
	"context"
	"fmt"
	"log"

	"github.com/otiai10/gosseract/v2"
)

type TesseractClient struct {
	dataPath string
	language string
}

func NewTesseractClient(dataPath string) *TesseractClient {
	return &TesseractClient{
		dataPath: dataPath,
		language: "eng",
	}
}

func (tc *TesseractClient) Name() string {
	return "tesseract"
}

// ExtractText runs Tesseract on a preprocessed copy of the image and
// returns the text with the mean word confidence.
func (tc *TesseractClient) ExtractText(ctx context.Context, imageData []byte) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	prepared, err := PreprocessImage(imageData)
	if err != nil {
		log.Printf("Image preprocessing failed, using original: %v", err)
		prepared = imageData
	}

	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		if err := client.SetTessdataPrefix(tc.dataPath); err != nil {
			return "", 0, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(tc.language); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}
	// Keep column gaps so table rows survive.
	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		log.Printf("Failed to set preserve_interword_spaces: %v", err)
	}

	if err := client.SetImageFromBytes(prepared); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	// Get bounding boxes to calculate confidence
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return text, 0, nil
	}

	var totalConf float64
	for _, box := range boxes {
		totalConf += box.Confidence
	}
	avgConf := 0.0
	if len(boxes) > 0 {
		avgConf = totalConf / float64(len(boxes))
	}

	return text, avgConf, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	log.Println("Tesseract client closed")
}
