package routes

import "github.com/orris-inc/billing/internal/interfaces/http/handlers"

func SetupAppRoutes(g Groups, h *handlers.AppHandler) {
	apps := g.Admin.Group("/apps")
	{
		apps.POST("", h.CreateApp)
		apps.GET("", h.ListApps)
		apps.GET("/:id", h.GetApp)
		apps.PATCH("/:id", h.UpdateAppDisplay)
	}
}
