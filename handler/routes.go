package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the health check and the /api/v1 endpoints.
func RegisterRoutes(router *gin.Engine, invoices *InvoiceHandler, reports *ReportHandler, stats *StatsHandler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "GST Invoice OCR",
		})
	})

	api := router.Group("/api/v1")
	{
		inv := api.Group("/invoices")
		{
			inv.POST("/process", invoices.ProcessInvoice)
			inv.POST("/batch", invoices.ProcessBatch)
			inv.GET("", invoices.ListInvoices)
			inv.GET("/:id", invoices.GetInvoice)
			inv.GET("/:id/items", invoices.InvoiceItems)
		}

		api.GET("/items", invoices.AllItems)
		api.PUT("/items/:id", invoices.UpdateItem)
		api.GET("/gst-slabs", invoices.ListGstSlabs)
		api.POST("/classify", invoices.Classify)
		api.POST("/extract", invoices.Extract)

		rep := api.Group("/reports")
		{
			rep.GET("/pdf/:id", reports.PDFReport)
			rep.GET("/json/:id", reports.JSONReport)
			rep.GET("/gstr1", reports.GSTR1Report)
		}

		api.GET("/stats", stats.Stats)
	}
}
