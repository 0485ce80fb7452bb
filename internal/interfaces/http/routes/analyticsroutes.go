package routes

import "github.com/orris-inc/billing/internal/interfaces/http/handlers"

func SetupAnalyticsRoutes(g Groups, h *handlers.AnalyticsHandler) {
	g.Admin.GET("/analytics", h.GetAnalytics)
}
