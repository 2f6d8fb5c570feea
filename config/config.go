package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string
	TesseractDataPath string
	MaxFileSize       int64
	DatabaseURL       string

	// OCR
	OCREngine       string // tesseract | paddle | azure
	PaddleOCRAPIURL string
	AzureEndpoint   string
	AzureKey        string

	// External enhancer / HSN suggestion
	AIProvider   string // none | openai | gemini
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string

	// Classification
	HSNDataFile         string
	FuzzyMatchThreshold float64
	PriceTolerance      float64
	CharSubstitution    bool
	DefaultGSTRate      float64

	RateLimitRPS     float64
	RateLimitBurst   int
	BatchConcurrency int

	// GSTR-1
	BusinessGSTIN string
	PlaceOfSupply string
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		TesseractDataPath: getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/"),
		MaxFileSize:       getEnvInt64("MAX_FILE_SIZE", 10*1024*1024), // 10 MB
		DatabaseURL:       os.Getenv("DATABASE_URL"),

		OCREngine:       strings.ToLower(getEnv("OCR_ENGINE", "tesseract")),
		PaddleOCRAPIURL: getEnv("PADDLEOCR_API_URL", "http://paddleocr:8866/predict/ocr_system"),
		AzureEndpoint:   os.Getenv("AZURE_VISION_ENDPOINT"),
		AzureKey:        os.Getenv("AZURE_VISION_KEY"),

		AIProvider:   strings.ToLower(getEnv("AI_PROVIDER", "none")),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		HSNDataFile:         getEnv("HSN_DATA_FILE", "data/hsn_codes.csv"),
		FuzzyMatchThreshold: getEnvFloat("FUZZY_MATCH_THRESHOLD", 60),
		PriceTolerance:      getEnvFloat("PRICE_TOLERANCE", 1),
		CharSubstitution:    getEnvBool("OCR_CHAR_SUBSTITUTION", true),
		DefaultGSTRate:      getEnvFloat("DEFAULT_GST_RATE", 18),

		RateLimitRPS:     getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:   int(getEnvInt64("RATE_LIMIT_BURST", 20)),
		BatchConcurrency: int(getEnvInt64("BATCH_CONCURRENCY", 4)),

		BusinessGSTIN: os.Getenv("BUSINESS_GSTIN"),
		PlaceOfSupply: getEnv("PLACE_OF_SUPPLY", "Maharashtra"),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		log.Printf("Invalid %s=%q, using default %v", key, v, fallback)
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %v", key, v, fallback)
		return fallback
	}
	return b
}
