package routes

import "github.com/orris-inc/billing/internal/interfaces/http/handlers"

func SetupPlanRoutes(g Groups, h *handlers.PlanHandler) {
	g.Public.GET("/plans", h.ListPlans)
	g.Public.GET("/plans/:id", h.GetPlan)
	g.Public.GET("/apps/:id/plan-options", h.ListPlanOptions)

	plans := g.Admin.Group("/plans")
	{
		plans.GET("", h.ListPlans)
		plans.POST("", h.CreatePlan)
		plans.PUT("/:id", h.UpdatePlan)
		plans.POST("/:id/archive", h.ArchivePlan)
		plans.DELETE("/:id", h.PurgePlan)
		plans.POST("/:id/features", h.AddFeature)
		plans.PUT("/:id/features/:feature_id", h.UpdateFeature)
		plans.DELETE("/:id/features/:feature_id", h.DeleteFeature)
	}
}
