package handler

import (
	"log/slog"
	"net/http"

	"contribledger.app/api-server/internal/http/dto"
	"contribledger.app/api-server/internal/service"
	"github.com/gin-gonic/gin"
)

type ContributionHandler struct {
	contributionService service.ContributionService
}

func NewContributionHandler(contributionService service.ContributionService) *ContributionHandler {
	return &ContributionHandler{contributionService: contributionService}
}

// List returns persisted contributions, newest first. An optional username
// query parameter narrows the view to one canonical user.
func (h *ContributionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	username := c.Query("username")

	records, err := h.contributionService.List(ctx, username)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list contributions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contributions"})
		return
	}

	c.JSON(http.StatusOK, dto.ListContributionsResponse{
		Outcomes: dto.ToContributionResponses(records),
	})
}
