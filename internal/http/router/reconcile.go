package router

import (
	"contribledger.app/api-server/internal/http/handler"
	"github.com/gin-gonic/gin"
)

func ReconcileRouter(router *gin.RouterGroup, handler *handler.ReconcileHandler) {
	router.GET("", handler.Run)
}
