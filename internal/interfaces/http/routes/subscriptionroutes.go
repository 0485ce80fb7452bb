package routes

import "github.com/orris-inc/billing/internal/interfaces/http/handlers"

func SetupSubscriptionRoutes(g Groups, h *handlers.SubscriptionHandler) {
	subs := g.User.Group("/subscriptions")
	{
		subs.POST("", h.CreateSubscription)
		subs.GET("/me", h.ListMySubscriptions)
		subs.GET("/:id", h.GetSubscription)
		subs.POST("/:id/cancel", h.CancelSubscription)
		subs.GET("/:id/events", h.ListEvents)
		subs.GET("/:id/payments", h.ListPayments)
	}

	admin := g.Admin.Group("/subscriptions")
	{
		admin.GET("", h.ListSubscriptions)
		admin.POST("/sweep", h.SweepPeriodEnds)
		admin.POST("/:id/renew", h.RenewSubscription)
		admin.PATCH("/:id/status", h.UpdateStatus)
	}
}
