package handlers

import (
	"errors"
	"net/http"

	"silo_scanner/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusStarted = "started"
	statusStopped = "stopped"
	statusReset   = "reset"

	errStartScan = "failed to start scan"
	errStopScan  = "failed to stop scan"
	errResetScan = "failed to reset scan"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondScanError maps controller sentinels to client errors; anything else is a 500.
func (h *Handler) respondScanError(c *gin.Context, userMsg, logKey string, err error) {
	code := scanErrorStatus(err)
	if code == http.StatusInternalServerError {
		h.logAndJSONError(c, code, userMsg, logKey, err)
		return
	}
	if h.log != nil {
		h.log.Infow(logKey, "err", err, "status", code)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func scanErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCatalog):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrScanInProgress), errors.Is(err, service.ErrScanNotActive):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnknownSilo):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Respond with a status and the current scan snapshot.
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string) {
	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"scan":   h.services.Scanner.Status(),
	})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start or resume the scan
// @Description  Resumes from the stored progress when it still matches the catalog.
// @Tags         scan
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, scan"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/scan/start [post]
// @Security     BearerAuth
func (h *Handler) startScan(c *gin.Context) {
	if err := h.services.Scanner.Start(c.Request.Context()); err != nil {
		h.respondScanError(c, errStartScan, "scan_start_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusStarted)
}

// @Summary      Stop the scan
// @Tags         scan
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/scan/stop [post]
// @Security     BearerAuth
func (h *Handler) stopScan(c *gin.Context) {
	if err := h.services.Scanner.Stop(c.Request.Context()); err != nil {
		h.respondScanError(c, errStopScan, "scan_stop_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusStopped)
}

// @Summary      Reset the scan
// @Description  Aborts any scan and forgets the stored resume point.
// @Tags         scan
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/scan/reset [post]
// @Security     BearerAuth
func (h *Handler) resetScan(c *gin.Context) {
	if err := h.services.Scanner.Reset(c.Request.Context()); err != nil {
		h.respondScanError(c, errResetScan, "scan_reset_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusReset)
}

// @Summary      Scan status
// @Tags         scan
// @Produce      json
// @Success      200  {object}  models.ScanStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/scan/status [get]
// @Security     BearerAuth
func (h *Handler) getScanStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Scanner.Status())
}

// @Summary      Silo catalog
// @Description  Silo IDs in scan order.
// @Tags         scan
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, silos"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/catalog [get]
// @Security     BearerAuth
func (h *Handler) getCatalog(c *gin.Context) {
	ids := h.services.Scanner.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"count": len(ids),
		"silos": ids,
	})
}
