package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/sessions")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.GET("/coach/:coachId", h.ListByCoach)
		group.GET("/client/:clientId", h.ListByClient)
		group.PATCH("/:id/cancel", h.Cancel)
		group.PATCH("/:id/reschedule", h.Reschedule)
	}

	// === Public Routes ===
	g.GET("/availability/:coachId/check", h.CheckSlot)
}
