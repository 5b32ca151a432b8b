package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

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

// @Summary      Latest reading
// @Description  Most recent sample of the current monitor run. 204 until the first poll completes.
// @Tags         device
// @Produce      json
// @Success      200  {object}  models.Reading
// @Success      204  "no reading yet"
// @Router       /api/v1/device/reading [get]
func (h *Handler) getReading(c *gin.Context) {
	reading, ok := h.source.Latest()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, reading)
}

// @Summary      Reading history
// @Description  Newest-last slice of the persisted reading log.
// @Tags         device
// @Produce      json
// @Param        limit  query  int  false  "max records returned (default 100, cap 1000)"
// @Success      200  {array}  models.Reading
// @Router       /api/v1/device/readings [get]
func (h *Handler) getReadings(c *gin.Context) {
	limit := parseLimit(c.Query("limit"))

	readings := h.history.Readings()
	if len(readings) > limit {
		readings = readings[len(readings)-limit:]
	}
	c.JSON(http.StatusOK, readings)
}

// parseLimit bounds the history query to a sane window.
func parseLimit(raw string) int {
	if raw == "" {
		return defaultHistoryLimit
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return defaultHistoryLimit
	}
	if v > maxHistoryLimit {
		return maxHistoryLimit
	}
	return v
}
