package job

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerHandler exposes the worker batch as an HTTP invocation: a scheduler
// (or a human) POSTs to it and gets the batch summary back.
type TriggerHandler struct {
	runner BatchRunner
	log    *slog.Logger
}

func NewTriggerHandler(runner BatchRunner, log *slog.Logger) *TriggerHandler {
	return &TriggerHandler{runner: runner, log: log}
}

// Run executes one batch synchronously and reports the summary.
func (h *TriggerHandler) Run(c *gin.Context) {
	summary, err := h.runner.RunBatch(c.Request.Context())
	if err != nil {
		h.log.Error("batch run failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("processed %d jobs", summary.Processed),
		"processed": summary.Processed,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	})
}
