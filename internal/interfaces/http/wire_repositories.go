package http

import (
	"gorm.io/gorm"

	"github.com/orris-inc/billing/internal/domain/promotion"
	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/infrastructure/repository"
	"github.com/orris-inc/billing/internal/shared/logger"
)

type repositories struct {
	apps   subscription.AppRepository
	plans  subscription.PlanRepository
	subs   subscription.SubscriptionRepository
	promos promotion.Repository
}

func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		apps:   repository.NewAppRepository(db, log.Named("repository.app")),
		plans:  repository.NewPlanRepository(db, log.Named("repository.plan")),
		subs:   repository.NewSubscriptionRepository(db, log.Named("repository.subscription")),
		promos: repository.NewPromoCodeRepository(db, log.Named("repository.promocode")),
	}
}
