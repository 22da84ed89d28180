package router

import (
	"contribledger.app/api-server/internal/http/handler"
	"github.com/gin-gonic/gin"
)

func ContributionRouter(router *gin.RouterGroup, handler *handler.ContributionHandler) {
	router.GET("", handler.List)
}
