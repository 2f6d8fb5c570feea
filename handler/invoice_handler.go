package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Aashish23092/gst-invoice-ocr/dto"
	"github.com/Aashish23092/gst-invoice-ocr/service"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	batchService   *service.BatchService
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, batchService *service.BatchService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		batchService:   batchService,
	}
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dto.ErrNoText),
		errors.Is(err, dto.ErrNoItems),
		errors.Is(err, dto.ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, dto.ErrInvoiceNotFound),
		errors.Is(err, dto.ErrItemNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ProcessInvoice handles the POST /invoices/process endpoint
func (h *InvoiceHandler) ProcessInvoice(c *gin.Context) {
	log.Println("Received invoice processing request")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "No file provided", nil)
		return
	}
	if _, err := dto.DetectFileType(fileHeader.Filename); err != nil {
		sendError(c, http.StatusBadRequest, "UNSUPPORTED_FILE", "Unsupported file type", err)
		return
	}

	response, err := h.invoiceService.ProcessInvoice(c.Request.Context(), fileHeader)
	if err != nil {
		sendError(c, statusFor(err), "PROCESSING_FAILED", "Failed to process invoice", err)
		return
	}

	log.Printf("Invoice %s processed successfully", response.InvoiceID)
	c.JSON(http.StatusOK, response)
}

// ProcessBatch handles the POST /invoices/batch endpoint
func (h *InvoiceHandler) ProcessBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse multipart form", err)
		return
	}

	request := &dto.BatchRequest{Files: form.File["files[]"]}
	if err := request.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), err)
		return
	}

	c.JSON(http.StatusOK, h.batchService.ProcessBatch(c.Request.Context(), request.Files))
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.invoiceService.ListInvoices(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to list invoices", err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	inv, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, statusFor(err), "NOT_FOUND", "Failed to load invoice", err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) InvoiceItems(c *gin.Context) {
	items, err := h.invoiceService.InvoiceItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, statusFor(err), "NOT_FOUND", "Failed to load items", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *InvoiceHandler) AllItems(c *gin.Context) {
	items, err := h.invoiceService.AllItems(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to load items", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// UpdateItem applies a manual correction to one stored item.
func (h *InvoiceHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	if err := req.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), err)
		return
	}

	item, err := h.invoiceService.UpdateItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		sendError(c, statusFor(err), "UPDATE_FAILED", "Failed to update item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InvoiceHandler) ListGstSlabs(c *gin.Context) {
	slabs, err := h.invoiceService.ListGstSlabs(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to load GST slabs", err)
		return
	}
	c.JSON(http.StatusOK, slabs)
}

// Classify assigns HSN codes and GST rates to caller-supplied items
// without storing anything.
func (h *InvoiceHandler) Classify(c *gin.Context) {
	var req dto.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": h.invoiceService.ClassifyItems(c.Request.Context(), req.Items)})
}

// Extract runs line-item extraction on raw invoice text.
func (h *InvoiceHandler) Extract(c *gin.Context) {
	var req dto.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", dto.ErrNoText.Error(), nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": h.invoiceService.ExtractItems(c.Request.Context(), req.Text)})
}
