// Package promocode implements promo code administration, eligibility
// checks and redemption.
package promocode

import (
	"context"
	"strings"
	"time"

	"github.com/orris-inc/billing/internal/domain/promotion"
	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/infrastructure/cache"
	"github.com/orris-inc/billing/internal/shared/biztime"
	"github.com/orris-inc/billing/internal/shared/db"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/id"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/query"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type Config struct {
	ValidationTTL time.Duration
}

type Service struct {
	promos promotion.Repository
	plans  subscription.PlanRepository
	subs   subscription.SubscriptionRepository
	tx     db.Transactor
	cache  *cache.Cache
	cfg    Config
	clock  biztime.Clock
	logger logger.Interface
}

func NewService(
	promos promotion.Repository,
	plans subscription.PlanRepository,
	subs subscription.SubscriptionRepository,
	tx db.Transactor,
	promoCache *cache.Cache,
	cfg Config,
	clock biztime.Clock,
	logger logger.Interface,
) *Service {
	if clock == nil {
		clock = biztime.NowUTC
	}
	if cfg.ValidationTTL <= 0 {
		cfg.ValidationTTL = 2 * time.Minute
	}
	return &Service{
		promos: promos,
		plans:  plans,
		subs:   subs,
		tx:     tx,
		cache:  promoCache,
		cfg:    cfg,
		clock:  clock,
		logger: logger,
	}
}

func (s *Service) CreatePromoCode(ctx context.Context, cmd CreatePromoCodeCommand) (*PromoCodeDTO, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	discountType, err := promotion.ParseDiscountType(cmd.DiscountType)
	if err != nil {
		return nil, invalidInput(err)
	}
	applicableTo := promotion.ApplicableToAll
	if cmd.ApplicableTo != "" {
		if applicableTo, err = promotion.ParseApplicability(cmd.ApplicableTo); err != nil {
			return nil, invalidInput(err)
		}
	}

	code := promotion.NormalizeCode(cmd.Code)
	if code == "" {
		if code, err = id.GenerateCode(id.PrefixPromoCode, id.DefaultCodeLength); err != nil {
			s.logger.Errorw("failed to generate promo code", "error", err)
			return nil, apperrors.NewInternalError("failed to generate promo code")
		}
	}
	active := true
	if cmd.IsActive != nil {
		active = *cmd.IsActive
	}
	params := promotion.PromoCodeParams{
		Code:              code,
		Description:       cmd.Description,
		DiscountType:      discountType,
		DiscountValue:     cmd.DiscountValue,
		EndDate:           cmd.EndDate,
		UsageLimit:        cmd.UsageLimit,
		IsActive:          active,
		IsFirstTimeOnly:   cmd.IsFirstTimeOnly,
		ApplicableTo:      applicableTo,
		MaxDiscountAmount: cmd.MaxDiscountAmount,
		MinPurchaseAmount: cmd.MinPurchaseAmount,
		ApplicablePlanIDs: cmd.ApplicablePlanIDs,
		ApplicableUserIDs: cmd.ApplicableUserIDs,
	}
	if cmd.StartDate != nil {
		params.StartDate = *cmd.StartDate
	}

	var created *promotion.PromoCode
	err = s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		promo, err := promotion.NewPromoCode(params, s.clock())
		if err != nil {
			return invalidInput(err)
		}
		if promo.IsActive() {
			if err := s.ensureCodeFree(ctx, promo.Code(), ""); err != nil {
				return err
			}
		}
		if err := s.ensurePlansExist(ctx, promo.ApplicablePlanIDs()); err != nil {
			return err
		}
		if err := s.promos.Create(ctx, promo); err != nil {
			return err
		}
		created = promo
		return nil
	})
	if err != nil {
		s.logger.Warnw("create promo code failed", "code", code, "error", err)
		return nil, toAppError(err, "failed to create promo code")
	}

	s.cache.Invalidate(ctx, invalidationKeys(created.ID(), created.Code())...)
	s.logger.Infow("promo code created", "promo_code_id", created.ID(), "code", created.Code())
	return toPromoCodeDTO(created), nil
}

func (s *Service) UpdatePromoCode(ctx context.Context, promoID string, cmd UpdatePromoCodeCommand) (*PromoCodeDTO, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	return s.mutate(ctx, promoID, "update", func(ctx context.Context, promo *promotion.PromoCode) error {
		params, err := mergeParams(promo.Params(), cmd)
		if err != nil {
			return invalidInput(err)
		}
		if params.IsActive && (!promo.IsActive() || promotion.NormalizeCode(params.Code) != promo.Code()) {
			if err := s.ensureCodeFree(ctx, promotion.NormalizeCode(params.Code), promo.ID()); err != nil {
				return err
			}
		}
		if err := promo.Update(params, s.clock()); err != nil {
			return invalidInput(err)
		}
		return nil
	})
}

func mergeParams(params promotion.PromoCodeParams, cmd UpdatePromoCodeCommand) (promotion.PromoCodeParams, error) {
	if cmd.Code != nil {
		params.Code = *cmd.Code
	}
	if cmd.Description != nil {
		params.Description = *cmd.Description
	}
	if cmd.DiscountType != nil {
		t, err := promotion.ParseDiscountType(*cmd.DiscountType)
		if err != nil {
			return params, err
		}
		params.DiscountType = t
	}
	if cmd.DiscountValue != nil {
		params.DiscountValue = *cmd.DiscountValue
	}
	if cmd.StartDate != nil {
		params.StartDate = *cmd.StartDate
	}
	if cmd.ClearEndDate {
		params.EndDate = nil
	} else if cmd.EndDate != nil {
		params.EndDate = cmd.EndDate
	}
	if cmd.ClearUsageLimit {
		params.UsageLimit = nil
	} else if cmd.UsageLimit != nil {
		params.UsageLimit = cmd.UsageLimit
	}
	if cmd.IsActive != nil {
		params.IsActive = *cmd.IsActive
	}
	if cmd.IsFirstTimeOnly != nil {
		params.IsFirstTimeOnly = *cmd.IsFirstTimeOnly
	}
	if cmd.ApplicableTo != nil {
		a, err := promotion.ParseApplicability(*cmd.ApplicableTo)
		if err != nil {
			return params, err
		}
		params.ApplicableTo = a
	}
	if cmd.MaxDiscountAmount != nil {
		params.MaxDiscountAmount = cmd.MaxDiscountAmount
	}
	if cmd.MinPurchaseAmount != nil {
		params.MinPurchaseAmount = cmd.MinPurchaseAmount
	}
	return params, nil
}

// DeletePromoCode deactivates the code. Redemptions are kept and the code
// value becomes free for a new promo.
func (s *Service) DeletePromoCode(ctx context.Context, promoID string) error {
	_, err := s.mutate(ctx, promoID, "delete", func(_ context.Context, promo *promotion.PromoCode) error {
		promo.Deactivate(s.clock())
		return nil
	})
	return err
}

func (s *Service) AddApplicablePlans(ctx context.Context, promoID string, planIDs []string) (*PromoCodeDTO, error) {
	if len(planIDs) == 0 {
		return nil, apperrors.NewValidationError("plan_ids cannot be empty")
	}
	return s.mutate(ctx, promoID, "add applicable plans", func(ctx context.Context, promo *promotion.PromoCode) error {
		added := promo.AddApplicablePlans(planIDs, s.clock())
		return s.ensurePlansExist(ctx, added)
	})
}

func (s *Service) RemoveApplicablePlans(ctx context.Context, promoID string, planIDs []string) (*PromoCodeDTO, error) {
	if len(planIDs) == 0 {
		return nil, apperrors.NewValidationError("plan_ids cannot be empty")
	}
	return s.mutate(ctx, promoID, "remove applicable plans", func(_ context.Context, promo *promotion.PromoCode) error {
		promo.RemoveApplicablePlans(planIDs, s.clock())
		return nil
	})
}

func (s *Service) AddApplicableUsers(ctx context.Context, promoID string, userIDs []string) (*PromoCodeDTO, error) {
	if len(userIDs) == 0 {
		return nil, apperrors.NewValidationError("user_ids cannot be empty")
	}
	return s.mutate(ctx, promoID, "add applicable users", func(_ context.Context, promo *promotion.PromoCode) error {
		promo.AddApplicableUsers(userIDs, s.clock())
		return nil
	})
}

func (s *Service) RemoveApplicableUsers(ctx context.Context, promoID string, userIDs []string) (*PromoCodeDTO, error) {
	if len(userIDs) == 0 {
		return nil, apperrors.NewValidationError("user_ids cannot be empty")
	}
	return s.mutate(ctx, promoID, "remove applicable users", func(_ context.Context, promo *promotion.PromoCode) error {
		promo.RemoveApplicableUsers(userIDs, s.clock())
		return nil
	})
}

// mutate loads a promo code, applies fn and persists the result in one
// transaction, then clears every cache entry derived from it.
func (s *Service) mutate(ctx context.Context, promoID, action string, fn func(context.Context, *promotion.PromoCode) error) (*PromoCodeDTO, error) {
	if err := utils.ValidateID(promoID); err != nil {
		return nil, err
	}

	var (
		updated *promotion.PromoCode
		oldCode string
	)
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		promo, err := s.load(ctx, promoID)
		if err != nil {
			return err
		}
		oldCode = promo.Code()
		if err := fn(ctx, promo); err != nil {
			return err
		}
		if err := s.promos.Update(ctx, promo); err != nil {
			return err
		}
		updated = promo
		return nil
	})
	if err != nil {
		s.logger.Warnw("promo code "+action+" failed", "promo_code_id", promoID, "error", err)
		return nil, toAppError(err, "failed to "+action+" promo code")
	}

	s.cache.Invalidate(ctx, invalidationKeys(promoID, oldCode, updated.Code())...)
	s.logger.Infow("promo code changed", "action", action, "promo_code_id", promoID, "code", updated.Code())
	return toPromoCodeDTO(updated), nil
}

func (s *Service) GetPromoCode(ctx context.Context, promoID string) (*PromoCodeDTO, error) {
	if err := utils.ValidateID(promoID); err != nil {
		return nil, err
	}
	return cache.GetOrLoad(ctx, s.cache, promoKey(promoID), 0, func(ctx context.Context) (*PromoCodeDTO, error) {
		promo, err := s.load(ctx, promoID)
		if err != nil {
			return nil, toAppError(err, "failed to get promo code")
		}
		return toPromoCodeDTO(promo), nil
	})
}

func (s *Service) ListPromoCodes(ctx context.Context, q ListPromoCodesQuery) (*ListPromoCodesResult, error) {
	if err := utils.ValidateStruct(q); err != nil {
		return nil, err
	}
	pf := query.NewPageFilter(q.Page, q.PageSize)
	q.Page, q.PageSize = pf.Page, pf.PageSize
	q.Code = promotion.NormalizeCode(q.Code)

	return cache.GetOrLoad(ctx, s.cache, listKey(q), 0, func(ctx context.Context) (*ListPromoCodesResult, error) {
		filter := promotion.Filter{IsActive: q.IsActive, Page: q.Page, PageSize: q.PageSize}
		if q.Code != "" {
			filter.Code = &q.Code
		}
		if q.DiscountType != "" {
			filter.DiscountType = &q.DiscountType
		}
		if q.ApplicableTo != "" {
			filter.ApplicableTo = &q.ApplicableTo
		}
		promos, total, err := s.promos.List(ctx, filter)
		if err != nil {
			s.logger.Errorw("failed to list promo codes", "error", err)
			return nil, apperrors.NewInternalError("failed to list promo codes")
		}
		out := make([]*PromoCodeDTO, 0, len(promos))
		for _, p := range promos {
			out = append(out, toPromoCodeDTO(p))
		}
		return &ListPromoCodesResult{PromoCodes: out, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
	})
}

func (s *Service) load(ctx context.Context, promoID string) (*promotion.PromoCode, error) {
	promo, err := s.promos.GetByID(ctx, promoID)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, promotion.ErrPromoNotFound
	}
	return promo, nil
}

func (s *Service) ensureCodeFree(ctx context.Context, code, excludeID string) error {
	exists, err := s.promos.ExistsActiveCode(ctx, code, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return promotion.ErrCodeExists
	}
	return nil
}

func (s *Service) ensurePlansExist(ctx context.Context, planIDs []string) error {
	var missing []string
	for _, planID := range planIDs {
		p, err := s.plans.GetByID(ctx, planID)
		if err != nil {
			return err
		}
		if p == nil {
			missing = append(missing, planID)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewNotFoundError("applicable plan not found", strings.Join(missing, ","))
	}
	return nil
}
