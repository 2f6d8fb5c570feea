package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/Aashish23092/gst-invoice-ocr/gst"
	"github.com/Aashish23092/gst-invoice-ocr/service"
	"github.com/Aashish23092/gst-invoice-ocr/store"
	"github.com/Aashish23092/gst-invoice-ocr/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const invoiceText = "Widget 3 10.00 30.00\nBiscuits 2 25.00 50.00\nTotal 80.00"

type stubEngine struct{ text string }

func (s stubEngine) Name() string { return "stub" }

func (s stubEngine) ExtractText(context.Context, []byte) (string, float64, error) {
	return s.text, 90, nil
}

type stubPDF struct{}

func (stubPDF) ExtractText(context.Context, []byte) (string, error) {
	return "", errors.New("not a pdf")
}

func (stubPDF) ExtractPageImages(context.Context, []byte) ([][]byte, error) {
	return nil, errors.New("not a pdf")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, ocrText string) *gin.Engine {
	t.Helper()

	repo := store.NewMemoryRepository()
	require.NoError(t, repo.SeedGstSlabs(context.Background(), gst.FallbackEntries()))

	parser := utils.NewLineItemParser(utils.NewNormalizer(true), 1)
	classifier := gst.NewClassifier(
		gst.NewHsnMatcher(gst.NewHsnTable(gst.FallbackEntries()), gst.DefaultMatchThreshold),
		gst.NewCategoryClassifier(),
		nil,
		gst.DefaultGSTRate,
	)
	pipeline := service.NewExtractionPipeline(parser, nil, classifier)
	reader := service.NewDocumentReader(stubPDF{}, stubEngine{text: ocrText})
	invoices := service.NewInvoiceService(reader, nil, pipeline, repo)

	router := gin.New()
	RegisterRoutes(router,
		NewInvoiceHandler(invoices, service.NewBatchService(invoices, 2)),
		NewReportHandler(service.NewReportService(repo, "27AAPFU0939F1ZV", "Maharashtra")),
		NewStatsHandler(service.NewStatsService(repo)),
	)
	return router
}

func upload(t *testing.T, field string, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, n := range names {
		part, err := w.CreateFormFile(field, n)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func do(router *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doJSON(router *gin.Engine, method, path, payload string) *httptest.ResponseRecorder {
	return do(router, method, path, bytes.NewBufferString(payload), "application/json")
}

func processOne(t *testing.T, router *gin.Engine) dto.ProcessInvoiceResponse {
	t.Helper()
	body, ct := upload(t, "file", "bill.png")
	rec := do(router, http.MethodPost, "/api/v1/invoices/process", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.ProcessInvoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	rec := do(newTestRouter(t, invoiceText), http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestProcessInvoice(t *testing.T) {
	router := newTestRouter(t, invoiceText)

	resp := processOne(t, router)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 94.4, resp.Summary.GrandTotal)

	rec := do(router, http.MethodGet, "/api/v1/invoices/"+resp.InvoiceID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/invoices/"+resp.InvoiceID+"/items", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var items []dto.StoredItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 2)
}

func TestProcessInvoiceRejectsBadUploads(t *testing.T) {
	router := newTestRouter(t, invoiceText)

	rec := do(router, http.MethodPost, "/api/v1/invoices/process", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct := upload(t, "file", "notes.txt")
	rec = do(router, http.MethodPost, "/api/v1/invoices/process", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "UNSUPPORTED_FILE", errResp.Error)
	assert.Equal(t, http.StatusBadRequest, errResp.Code)
}

func TestProcessInvoiceWithoutItems(t *testing.T) {
	router := newTestRouter(t, "Thank you for shopping with us")

	body, ct := upload(t, "file", "bill.png")
	rec := do(router, http.MethodPost, "/api/v1/invoices/process", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), dto.ErrNoItems.Error())
}

func TestProcessBatch(t *testing.T) {
	router := newTestRouter(t, invoiceText)

	body, ct := upload(t, "files[]", "a.png", "b.jpg")
	rec := do(router, http.MethodPost, "/api/v1/invoices/batch", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Succeeded)
	assert.Zero(t, resp.Failed)

	body, ct = upload(t, "files[]", "a.png", "b.docx")
	rec = do(router, http.MethodPost, "/api/v1/invoices/batch", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/invoices", nil, "")
	var list []dto.Invoice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestGetInvoiceNotFound(t *testing.T) {
	rec := do(newTestRouter(t, invoiceText), http.MethodGet, "/api/v1/invoices/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateItem(t *testing.T) {
	router := newTestRouter(t, invoiceText)
	resp := processOne(t, router)

	rec := do(router, http.MethodGet, "/api/v1/items", nil, "")
	var items []dto.StoredItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, resp.InvoiceID, items[0].InvoiceID)

	rec = doJSON(router, http.MethodPut, "/api/v1/items/"+items[0].ID, `{"hsn_code":"8471","gst_rate":12}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated dto.StoredItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "8471", updated.HSNCode)
	assert.Equal(t, 12.0, updated.GSTRate)
	assert.Equal(t, dto.SourceManual, updated.ClassifiedBy)

	rec = doJSON(router, http.MethodPut, "/api/v1/items/"+items[0].ID, `{"qty":-2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(router, http.MethodPut, "/api/v1/items/0b6f8c3e-4a52-4c43-9b1d-2f0f6c8f7a10", `{"qty":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListGstSlabs(t *testing.T) {
	rec := do(newTestRouter(t, invoiceText), http.MethodGet, "/api/v1/gst-slabs", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var slabs []dto.HsnEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slabs))
	assert.Len(t, slabs, len(gst.FallbackEntries()))
}

func TestClassifyAndExtract(t *testing.T) {
	router := newTestRouter(t, invoiceText)

	rec := doJSON(router, http.MethodPost, "/api/v1/classify", `{"items":[{"item":"Biscuits","qty":1,"unit_price":50,"total":50}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var classified struct {
		Items []dto.ClassifiedItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &classified))
	require.Len(t, classified.Items, 1)
	assert.Equal(t, "1905", classified.Items[0].HSNCode)

	rec = doJSON(router, http.MethodPost, "/api/v1/classify", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/v1/extract", `{"text":"Rice 5 60.00 300.00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var extracted struct {
		Items []dto.CandidateItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &extracted))
	assert.Equal(t, []dto.CandidateItem{{Item: "Rice", Qty: 5, UnitPrice: 60, Total: 300}}, extracted.Items)

	rec = doJSON(router, http.MethodPost, "/api/v1/extract", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReports(t *testing.T) {
	router := newTestRouter(t, invoiceText)

	rec := do(router, http.MethodGet, "/api/v1/reports/gstr1", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := processOne(t, router)

	rec = do(router, http.MethodGet, "/api/v1/reports/json/"+resp.InvoiceID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report dto.InvoiceReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 14.4, report.Summary.TotalGST)

	rec = do(router, http.MethodGet, "/api/v1/reports/gstr1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rec.Body.String(), "27AAPFU0939F1ZV")

	rec = do(router, http.MethodGet, "/api/v1/reports/gstr1?from=2024-13-01", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/reports/json/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	router := newTestRouter(t, invoiceText)
	processOne(t, router)

	rec := do(router, http.MethodGet, "/api/v1/stats?group_by=week", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats dto.StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.InvoiceCount)
	assert.Equal(t, "week", stats.GroupBy)

	rec = do(router, http.MethodGet, "/api/v1/stats?group_by=decade", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/stats?from=2024-05-01&to=2024-04-01", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(rate.NewLimiter(rate.Every(time.Hour), 1)))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/ping", nil, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(router, http.MethodGet, "/ping", nil, "").Code)
}

func TestCORSPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	rec := do(router, http.MethodOptions, "/ping", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
