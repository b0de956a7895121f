package handlers

import (
	"net/http"
	"strconv"

	"silo_scanner/internal/gateway"
	"silo_scanner/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidSiloID = "invalid silo id"
	errNoReading     = "no reading for silo yet"
	errLoadReadings  = "failed to load readings"
	errInspectSilo   = "failed to inspect silo"
)

// siloView pairs a reading with its derived status.
type siloView struct {
	Reading models.SensorReading `json:"reading"`
	Status  models.SiloStatus    `json:"status"`
}

func newSiloView(r models.SensorReading) siloView {
	return siloView{Reading: r, Status: r.Status()}
}

func parseSiloID(s string) (models.SiloID, bool) {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, false
	}
	return models.SiloID(v), true
}

// @Summary      Latest readings
// @Description  Latest stored reading of every silo that has been read.
// @Tags         silos
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, silos"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/silos [get]
// @Security     BearerAuth
func (h *Handler) listSilos(c *gin.Context) {
	readings, err := h.services.Readings.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadReadings, "readings_list_failed", err)
		return
	}
	views := make([]siloView, 0, len(readings))
	for _, r := range readings {
		views = append(views, newSiloView(r))
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(views),
		"silos": views,
	})
}

// @Summary      Latest reading of one silo
// @Tags         silos
// @Produce      json
// @Param        id   path      int  true  "Silo ID"
// @Success      200  {object}  siloView
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/silos/{id} [get]
// @Security     BearerAuth
func (h *Handler) getSilo(c *gin.Context) {
	id, ok := parseSiloID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidSiloID})
		return
	}
	r, err := h.services.Readings.Latest(c.Request.Context(), id)
	if err != nil {
		h.respondScanError(c, errLoadReadings, "reading_get_failed", err)
		return
	}
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoReading})
		return
	}
	c.JSON(http.StatusOK, newSiloView(*r))
}

// @Summary      Inspect one silo
// @Description  Reads the silo now, outside the scan. Scan position and disconnected list are not touched.
// @Tags         silos
// @Produce      json
// @Param        id   path      int  true  "Silo ID"
// @Success      200  {object}  siloView
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/silos/{id}/inspect [post]
// @Security     BearerAuth
func (h *Handler) inspectSilo(c *gin.Context) {
	id, ok := parseSiloID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidSiloID})
		return
	}
	r, err := h.services.Scanner.Inspect(c.Request.Context(), id)
	if err != nil {
		h.respondScanError(c, errInspectSilo, "silo_inspect_failed", err)
		return
	}
	c.JSON(http.StatusOK, newSiloView(r))
}

// @Summary      Simulated sensor API
// @Description  Same shape as the remote sensor service. Only mounted when the simulator is enabled.
// @Tags         simulator
// @Produce      json
// @Param        silo_number  query  int  true  "Silo number"
// @Success      200  {array}   gateway.APIReading
// @Failure      400  {object}  map[string]string
// @Router       /sim/readings/avg/latest/by-silo-number [get]
func (h *Handler) simReading(c *gin.Context) {
	id, ok := parseSiloID(c.Query("silo_number"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidSiloID})
		return
	}
	c.JSON(http.StatusOK, []gateway.APIReading{h.services.Simulator.Reading(id)})
}
