package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "FUZZY_MATCH_THRESHOLD", "PRICE_TOLERANCE", "OCR_CHAR_SUBSTITUTION", "AI_PROVIDER", "DEFAULT_GST_RATE"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 60.0, cfg.FuzzyMatchThreshold)
	assert.Equal(t, 1.0, cfg.PriceTolerance)
	assert.True(t, cfg.CharSubstitution)
	assert.Equal(t, "none", cfg.AIProvider)
	assert.Equal(t, 18.0, cfg.DefaultGSTRate)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FUZZY_MATCH_THRESHOLD", "75")
	t.Setenv("OCR_CHAR_SUBSTITUTION", "false")
	t.Setenv("AI_PROVIDER", "Gemini")
	t.Setenv("BATCH_CONCURRENCY", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 75.0, cfg.FuzzyMatchThreshold)
	assert.False(t, cfg.CharSubstitution)
	assert.Equal(t, "gemini", cfg.AIProvider)
	assert.Equal(t, 4, cfg.BatchConcurrency)
}
