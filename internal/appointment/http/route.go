package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/appointments")
	group.Use(authMiddleware)
	{
		group.POST("", h.Create)
		group.GET("", adminMiddleware, h.ListAll)
		group.GET("/me", h.ListMine)
		group.GET("/:id", h.Get)
		group.PATCH("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
	}
}
