package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skoolhq/sms-portal-api/internal/service"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
	"github.com/skoolhq/sms-portal-api/pkg/response"
)

// importBodyLimit caps backup uploads at 32 MiB.
const importBodyLimit = 32 << 20

// BackupHandler exposes export/import of the full dataset.
type BackupHandler struct {
	backup *service.BackupService
}

// NewBackupHandler constructs BackupHandler.
func NewBackupHandler(backup *service.BackupService) *BackupHandler {
	return &BackupHandler{backup: backup}
}

// Export streams the full dataset as a downloadable JSON document.
func (h *BackupHandler) Export(c *gin.Context) {
	doc, err := h.backup.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("backup-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, doc)
}

// Import replaces the student and notification collections from an uploaded
// backup document. Admin accounts are left untouched.
func (h *BackupHandler) Import(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, importBodyLimit))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidFormat.Code, appErrors.ErrInvalidFormat.Status, "failed to read backup upload"))
		return
	}
	if err := h.backup.Import(c.Request.Context(), raw); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"imported": true}, nil)
}
