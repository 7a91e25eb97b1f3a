package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skoolhq/sms-portal-api/internal/connectivity"
	"github.com/skoolhq/sms-portal-api/internal/service"
	appErrors "github.com/skoolhq/sms-portal-api/pkg/errors"
	"github.com/skoolhq/sms-portal-api/pkg/response"
)

// SyncHandler exposes the offline sync queue and connectivity toggle.
type SyncHandler struct {
	sync    *service.SyncService
	monitor *connectivity.Monitor
}

// NewSyncHandler constructs SyncHandler.
func NewSyncHandler(sync *service.SyncService, monitor *connectivity.Monitor) *SyncHandler {
	return &SyncHandler{sync: sync, monitor: monitor}
}

// Status reports connectivity and the number of queued entries.
func (h *SyncHandler) Status(c *gin.Context) {
	status, err := h.sync.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Drain replays queued mutations against the remote endpoint.
func (h *SyncHandler) Drain(c *gin.Context) {
	if err := h.sync.Drain(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.sync.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

type connectivityRequest struct {
	Online *bool `json:"online"`
}

// SetConnectivity flips the online flag. Going from offline to online also
// triggers a background drain via the monitor's subscribers.
func (h *SyncHandler) SetConnectivity(c *gin.Context) {
	var req connectivityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Online == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "payload must carry an online flag"))
		return
	}
	h.monitor.SetOnline(*req.Online)
	response.JSON(c, http.StatusOK, gin.H{"online": h.monitor.Online()}, nil)
}
