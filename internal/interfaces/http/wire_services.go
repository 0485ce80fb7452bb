package http

import (
	"gorm.io/gorm"

	"github.com/orris-inc/billing/internal/application/analytics"
	"github.com/orris-inc/billing/internal/application/app"
	"github.com/orris-inc/billing/internal/application/plan"
	"github.com/orris-inc/billing/internal/application/promocode"
	"github.com/orris-inc/billing/internal/application/subscription"
	"github.com/orris-inc/billing/internal/infrastructure/cache"
	"github.com/orris-inc/billing/internal/infrastructure/config"
	"github.com/orris-inc/billing/internal/shared/biztime"
	"github.com/orris-inc/billing/internal/shared/db"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/services/markdown"
)

// Services are the application services behind every entry point.
type Services struct {
	Apps          *app.Service
	Plans         *plan.Service
	PromoCodes    *promocode.Service
	Subscriptions *subscription.Service
	Analytics     *analytics.Service
}

func newServices(repos *repositories, gdb *gorm.DB, caches *cache.Caches, cfg *config.Config, clock biztime.Clock, log logger.Interface) *Services {
	tx := db.NewTransactionManager(gdb)

	return &Services{
		Apps: app.NewService(repos.apps, clock, log.Named("app")),
		Plans: plan.NewService(repos.apps, repos.plans, repos.subs, tx, caches.Plans, markdown.NewRenderer(),
			plan.Config{
				DropdownTTL:     cfg.Cache.PlanDropdownTTL,
				DefaultCurrency: cfg.Billing.DefaultCurrency,
			}, clock, log.Named("plan")),
		PromoCodes: promocode.NewService(repos.promos, repos.plans, repos.subs, tx, caches.Promos,
			promocode.Config{ValidationTTL: cfg.Cache.ValidationTTL}, clock, log.Named("promocode")),
		Subscriptions: subscription.NewService(repos.subs, repos.plans, tx, caches.Subscriptions,
			subscription.Config{SweepBatchSize: cfg.Billing.SweepBatchSize}, clock, log.Named("subscription")),
		Analytics: analytics.NewService(repos.subs, repos.plans, caches.Analytics, log.Named("analytics")),
	}
}
