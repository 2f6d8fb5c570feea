package main

import (
	"context"
	"log"
	"os"

	"github.com/Aashish23092/gst-invoice-ocr/client"
	"github.com/Aashish23092/gst-invoice-ocr/config"
	"github.com/Aashish23092/gst-invoice-ocr/gst"
	"github.com/Aashish23092/gst-invoice-ocr/handler"
	"github.com/Aashish23092/gst-invoice-ocr/service"
	"github.com/Aashish23092/gst-invoice-ocr/store"
	"github.com/Aashish23092/gst-invoice-ocr/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type repository interface {
	service.InvoiceStore
	gst.SlabSource
}

// aiProvider both cleans up OCR text and suggests HSN codes.
type aiProvider interface {
	service.Enhancer
	gst.Suggester
}

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()

	// Tesseract v5 looks up language data through this variable
	os.Setenv("TESSDATA_PREFIX", cfg.TesseractDataPath)
	log.Println("TESSDATA_PREFIX set to:", os.Getenv("TESSDATA_PREFIX"))

	ctx := context.Background()

	repo := openRepository(ctx, cfg)
	table := gst.LoadHsnTable(ctx, repo, cfg.HSNDataFile)

	// Initialize OCR engines
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	defer tesseractClient.Close()
	engines := ocrEngines(cfg, tesseractClient)

	ai := newAIProvider(cfg)

	// Initialize service layer
	parser := utils.NewLineItemParser(utils.NewNormalizer(cfg.CharSubstitution), cfg.PriceTolerance)
	classifier := gst.NewClassifier(
		gst.NewHsnMatcher(table, cfg.FuzzyMatchThreshold),
		gst.NewCategoryClassifier(),
		ai,
		cfg.DefaultGSTRate,
	)
	pipeline := service.NewExtractionPipeline(parser, ai, classifier)
	reader := service.NewDocumentReader(service.NewPDFProcessor(), engines...)

	invoiceService := service.NewInvoiceService(reader, service.NewQRReader(), pipeline, repo)
	batchService := service.NewBatchService(invoiceService, cfg.BatchConcurrency)
	reportService := service.NewReportService(repo, cfg.BusinessGSTIN, cfg.PlaceOfSupply)
	statsService := service.NewStatsService(repo)

	// Setup Gin router
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxFileSize
	router.Use(handler.CORS())
	router.Use(handler.RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)))

	handler.RegisterRoutes(router,
		handler.NewInvoiceHandler(invoiceService, batchService),
		handler.NewReportHandler(reportService),
		handler.NewStatsHandler(statsService),
	)

	// Start server
	log.Printf("Starting GST Invoice OCR service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func openRepository(ctx context.Context, cfg *config.Config) repository {
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set, keeping invoices in memory")
		return store.NewMemoryRepository()
	}

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")
	return store.NewGormRepository(db)
}

// ocrEngines returns the configured engine first, with Tesseract as the
// fallback.
func ocrEngines(cfg *config.Config, tesseract *client.TesseractClient) []service.OCREngine {
	switch cfg.OCREngine {
	case "paddle":
		log.Printf("Using PaddleOCR at %s with Tesseract fallback", cfg.PaddleOCRAPIURL)
		return []service.OCREngine{client.NewPaddleClient(cfg.PaddleOCRAPIURL), tesseract}
	case "azure":
		if cfg.AzureEndpoint == "" || cfg.AzureKey == "" {
			log.Println("Azure OCR selected but AZURE_VISION_ENDPOINT/AZURE_VISION_KEY missing, using Tesseract")
			break
		}
		log.Println("Using Azure Computer Vision with Tesseract fallback")
		return []service.OCREngine{client.NewAzureClient(cfg.AzureEndpoint, cfg.AzureKey), tesseract}
	}
	return []service.OCREngine{tesseract}
}

func newAIProvider(cfg *config.Config) aiProvider {
	switch cfg.AIProvider {
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			log.Printf("Using OpenAI (%s) for text enhancement and HSN suggestions", cfg.OpenAIModel)
			return client.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		}
		log.Println("AI_PROVIDER=openai but OPENAI_API_KEY is empty")
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			log.Printf("Using Gemini (%s) for text enhancement and HSN suggestions", cfg.GeminiModel)
			return client.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		}
		log.Println("AI_PROVIDER=gemini but GEMINI_API_KEY is empty")
	}
	return noAI{}
}

type noAI struct {
	service.NoopEnhancer
	gst.NoopSuggester
}

func (noAI) Available() bool { return false }
