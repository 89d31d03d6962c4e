package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/Antecedent-Intelligence/internal/application/analysis"
)

// StatusHandler serves the chunk status of a batch run.
type StatusHandler struct {
	reader analysis.StatusReader
}

func NewStatusHandler(reader analysis.StatusReader) *StatusHandler {
	return &StatusHandler{reader: reader}
}

// StatusResponse is the /status body.
type StatusResponse struct {
	RunID   string                `json:"run_id"`
	Chunks  []analysis.ChunkState `json:"chunks"`
	Summary map[string]int        `json:"summary"`
}

// Status handles GET /status?run_id=. Without run_id the most recent run is
// returned.
func (h *StatusHandler) Status(c *gin.Context) {
	snap, err := h.reader.Lookup(c.Request.Context(), c.Query("run_id"))
	if err != nil {
		writeAppError(c, err)
		return
	}
	summary := make(map[string]int)
	for _, st := range snap.Chunks {
		summary[string(st.Status)]++
	}
	c.JSON(http.StatusOK, StatusResponse{RunID: snap.RunID, Chunks: snap.Chunks, Summary: summary})
}

//Personal.AI order the ending
