package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/orris-inc/billing/internal/application/promocode"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type PromoCodeHandler struct {
	promos promoCodeService
	logger logger.Interface
}

func NewPromoCodeHandler(promos promoCodeService, logger logger.Interface) *PromoCodeHandler {
	return &PromoCodeHandler{promos: promos, logger: logger}
}

type ValidatePromoCodeRequest struct {
	Code   string `json:"code"`
	PlanID string `json:"plan_id"`
	// UserID is honoured for admins only.
	UserID string `json:"user_id,omitempty"`
}

type ApplyPromoCodeRequest struct {
	SubscriptionID string          `json:"subscription_id"`
	PromoCodeID    string          `json:"promo_code_id"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	UserID         string          `json:"user_id,omitempty"`
}

type ApplicabilityRequest struct {
	IDs []string `json:"ids"`
}

func (h *PromoCodeHandler) CreatePromoCode(c *gin.Context) {
	var cmd promocode.CreatePromoCodeCommand
	if err := bindJSON(c, &cmd); err != nil {
		h.logger.Warnw("invalid request body for create promo code", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.promos.CreatePromoCode(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Promo code created successfully")
}

func (h *PromoCodeHandler) UpdatePromoCode(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "promo code")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var cmd promocode.UpdatePromoCodeCommand
	if err := bindJSON(c, &cmd); err != nil {
		h.logger.Warnw("invalid request body for update promo code", "promo_code_id", id, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.promos.UpdatePromoCode(c.Request.Context(), id, cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Promo code updated successfully", result)
}

func (h *PromoCodeHandler) DeletePromoCode(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "promo code")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.promos.DeletePromoCode(c.Request.Context(), id); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

func (h *PromoCodeHandler) GetPromoCode(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "promo code")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.promos.GetPromoCode(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *PromoCodeHandler) ListPromoCodes(c *gin.Context) {
	var q promocode.ListPromoCodesQuery
	if err := bindQuery(c, &q); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.promos.ListPromoCodes(c.Request.Context(), q)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.PromoCodes, result.Total, result.Page, result.PageSize)
}

func (h *PromoCodeHandler) AddApplicablePlans(c *gin.Context) {
	h.changeApplicability(c, h.promos.AddApplicablePlans)
}

func (h *PromoCodeHandler) RemoveApplicablePlans(c *gin.Context) {
	h.changeApplicability(c, h.promos.RemoveApplicablePlans)
}

func (h *PromoCodeHandler) AddApplicableUsers(c *gin.Context) {
	h.changeApplicability(c, h.promos.AddApplicableUsers)
}

func (h *PromoCodeHandler) RemoveApplicableUsers(c *gin.Context) {
	h.changeApplicability(c, h.promos.RemoveApplicableUsers)
}

func (h *PromoCodeHandler) changeApplicability(c *gin.Context,
	apply func(ctx context.Context, id string, ids []string) (*promocode.PromoCodeDTO, error)) {
	id, err := utils.ParseIDParam(c, "id", "promo code")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ApplicabilityRequest
	if err := bindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := apply(c.Request.Context(), id, req.IDs)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Promo code updated successfully", result)
}

// ValidatePromoCode reports an unusable code as a 200 with is_valid=false;
// only malformed requests and missing plans are errors.
func (h *PromoCodeHandler) ValidatePromoCode(c *gin.Context) {
	var req ValidatePromoCodeRequest
	if err := bindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.promos.ValidatePromoCode(c.Request.Context(), req.Code, actingUser(c, req.UserID), req.PlanID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, result.Message, result)
}

func (h *PromoCodeHandler) ApplyPromoCode(c *gin.Context) {
	var req ApplyPromoCodeRequest
	if err := bindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.promos.ApplyPromoCode(c.Request.Context(), promocode.ApplyPromoCodeCommand{
		SubscriptionID: req.SubscriptionID,
		UserID:         actingUser(c, req.UserID),
		PromoCodeID:    req.PromoCodeID,
		DiscountAmount: req.DiscountAmount,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Promo code applied successfully")
}

func (h *PromoCodeHandler) ListRedemptions(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "promo code")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.promos.ListRedemptions(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}
