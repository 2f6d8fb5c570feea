package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Aashish23092/gst-invoice-ocr/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// PDFReport handles GET /reports/pdf/:id
func (h *ReportHandler) PDFReport(c *gin.Context) {
	id := c.Param("id")
	data, err := h.reportService.PDFReport(c.Request.Context(), id)
	if err != nil {
		sendError(c, statusFor(err), "REPORT_FAILED", "Failed to generate PDF report", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice_%s_report.pdf", id))
	c.Data(http.StatusOK, "application/pdf", data)
}

// JSONReport handles GET /reports/json/:id
func (h *ReportHandler) JSONReport(c *gin.Context) {
	report, err := h.reportService.JSONReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, statusFor(err), "REPORT_FAILED", "Failed to generate JSON report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GSTR1Report handles GET /reports/gstr1?from=&to=
func (h *ReportHandler) GSTR1Report(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid date range", err)
		return
	}

	out, err := h.reportService.GSTR1Report(c.Request.Context(), from, to)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "REPORT_FAILED", "Failed to generate GSTR-1 report", err)
		return
	}
	if out == service.NoGSTR1Data {
		sendError(c, http.StatusNotFound, "NO_DATA", out, nil)
		return
	}

	name := "GSTR1_report.csv"
	if from != nil && to != nil {
		name = fmt.Sprintf("GSTR1_report_%s_to_%s.csv", from.Format(dateLayout), to.Format(dateLayout))
	}
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out))
}

const dateLayout = "2006-01-02"

// parseDateRange reads optional from/to query dates (YYYY-MM-DD). The
// returned upper bound covers the whole of the "to" day.
func parseDateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from date %q: %w", v, err)
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to date %q: %w", v, err)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("to date is before from date")
	}
	return from, to, nil
}
