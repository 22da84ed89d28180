package handler

import (
	"log/slog"
	"net/http"

	"contribledger.app/api-server/internal/http/dto"
	"contribledger.app/api-server/internal/service"
	"github.com/gin-gonic/gin"
)

type ReconcileHandler struct {
	reconcileService service.ReconcileService
}

func NewReconcileHandler(reconcileService service.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{reconcileService: reconcileService}
}

// Run triggers a synchronous reconciliation pass for one username.
func (h *ReconcileHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()

	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username required"})
		return
	}

	result, err := h.reconcileService.Run(ctx, username)
	if err != nil {
		slog.ErrorContext(ctx, "reconciliation failed", "error", err, "username", username)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "reconciliation failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.ToReconcileResponse(username, result))
}
