package router

import (
	"contribledger.app/api-server/internal/http/handler"
	"contribledger.app/api-server/internal/service"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		reconcileHandler := handler.NewReconcileHandler(services.Reconcile())
		ReconcileRouter(v1.Group("/reconcile"), reconcileHandler)

		contributionHandler := handler.NewContributionHandler(services.Contributions())
		ContributionRouter(v1.Group("/contributions"), contributionHandler)
	}
}
