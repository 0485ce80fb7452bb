package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/billing/internal/interfaces/http/handlers"
)

// SetupPromoCodeRoutes registers promo endpoints. limit guards the caller
// facing validate and apply calls.
func SetupPromoCodeRoutes(g Groups, h *handlers.PromoCodeHandler, limit gin.HandlerFunc) {
	g.User.POST("/promo-codes/validate", limit, h.ValidatePromoCode)
	g.User.POST("/promo-codes/apply", limit, h.ApplyPromoCode)

	promos := g.Admin.Group("/promo-codes")
	{
		promos.GET("", h.ListPromoCodes)
		promos.POST("", h.CreatePromoCode)
		promos.GET("/:id", h.GetPromoCode)
		promos.PUT("/:id", h.UpdatePromoCode)
		promos.DELETE("/:id", h.DeletePromoCode)
		promos.POST("/:id/plans", h.AddApplicablePlans)
		promos.DELETE("/:id/plans", h.RemoveApplicablePlans)
		promos.POST("/:id/users", h.AddApplicableUsers)
		promos.DELETE("/:id/users", h.RemoveApplicableUsers)
		promos.GET("/:id/redemptions", h.ListRedemptions)
	}
}
