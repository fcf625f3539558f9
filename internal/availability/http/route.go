package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the availability routes. coachMiddleware must run
// after authMiddleware and admit coaches and admins only.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, coachMiddleware gin.HandlerFunc) {
	group := g.Group("/availability")

	// === Public Routes ===
	group.GET("/:coachId", h.Get)

	// === Coach / Admin Routes ===
	writes := group.Group("")
	writes.Use(authMiddleware, coachMiddleware)
	{
		writes.POST("", h.Set)
		writes.POST("/dates", h.AddDates)
		writes.PATCH("/remove", h.RemoveDate)
	}
}
