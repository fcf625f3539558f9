package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the public file download routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/files")

	group.GET("/:id", h.ServeFile)
	group.GET("/:id/thumbnail", h.ServeThumbnail)
}
