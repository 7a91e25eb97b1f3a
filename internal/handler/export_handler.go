package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skoolhq/sms-portal-api/internal/service"
	"github.com/skoolhq/sms-portal-api/pkg/response"
)

// ExportHandler serves downloadable roster and fee reports.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// StudentsCSV streams the student roster as CSV.
func (h *ExportHandler) StudentsCSV(c *gin.Context) {
	data, err := h.exports.RosterCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="students.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// FeesPDF streams the fee collection report as PDF.
func (h *ExportHandler) FeesPDF(c *gin.Context) {
	data, err := h.exports.FeeReportPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="fees.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
