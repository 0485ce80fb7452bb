package http

import (
	"github.com/orris-inc/billing/internal/interfaces/http/handlers"
	"github.com/orris-inc/billing/internal/shared/logger"
)

type allHandlers struct {
	app          *handlers.AppHandler
	plan         *handlers.PlanHandler
	promoCode    *handlers.PromoCodeHandler
	subscription *handlers.SubscriptionHandler
	analytics    *handlers.AnalyticsHandler
}

func newHandlers(s *Services, log logger.Interface) *allHandlers {
	return &allHandlers{
		app:          handlers.NewAppHandler(s.Apps, log.Named("handler.app")),
		plan:         handlers.NewPlanHandler(s.Plans, log.Named("handler.plan")),
		promoCode:    handlers.NewPromoCodeHandler(s.PromoCodes, log.Named("handler.promocode")),
		subscription: handlers.NewSubscriptionHandler(s.Subscriptions, log.Named("handler.subscription")),
		analytics:    handlers.NewAnalyticsHandler(s.Analytics),
	}
}
