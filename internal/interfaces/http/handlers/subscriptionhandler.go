package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/billing/internal/application/subscription/usecases"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type SubscriptionHandler struct {
	subs   subscriptionService
	logger logger.Interface
}

func NewSubscriptionHandler(subs subscriptionService, logger logger.Interface) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, logger: logger}
}

type CreateSubscriptionRequest struct {
	PlanID      string  `json:"plan_id"`
	AppID       string  `json:"app_id"`
	PromoCodeID *string `json:"promo_code_id,omitempty"`
	// UserID is honoured for admins only.
	UserID string `json:"user_id,omitempty"`
}

type CancelSubscriptionRequest struct {
	Immediate bool `json:"immediate"`
}

type UpdateSubscriptionStatusRequest struct {
	Status string `json:"status"`
}

type SweepRequest struct {
	// Now overrides the sweep clock; zero means the current time.
	Now time.Time `json:"now"`
}

func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := bindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.subs.CreateSubscription(c.Request.Context(), usecases.CreateSubscriptionCommand{
		PlanID:      req.PlanID,
		UserID:      actingUser(c, req.UserID),
		AppID:       req.AppID,
		PromoCodeID: req.PromoCodeID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Subscription created successfully")
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CancelSubscriptionRequest
	if c.Request.ContentLength > 0 {
		if err := bindJSON(c, &req); err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
	}

	result, err := h.subs.CancelSubscription(c.Request.Context(), usecases.CancelSubscriptionCommand{
		SubscriptionID: id,
		UserID:         ownerScope(c),
		Immediate:      req.Immediate,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Subscription canceled successfully", result)
}

func (h *SubscriptionHandler) RenewSubscription(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.subs.RenewSubscription(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Subscription renewed successfully", result)
}

func (h *SubscriptionHandler) UpdateStatus(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdateSubscriptionStatusRequest
	if err := bindJSON(c, &req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.subs.UpdateStatus(c.Request.Context(), usecases.UpdateSubscriptionStatusCommand{
		SubscriptionID: id,
		Status:         req.Status,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Subscription status updated successfully", result)
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.subs.GetSubscription(c.Request.Context(), id, ownerScope(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListMySubscriptions returns the caller's subscriptions, optionally for one
// app. Admins may pass user_id to inspect another user.
func (h *SubscriptionHandler) ListMySubscriptions(c *gin.Context) {
	result, err := h.subs.GetUserSubscriptions(c.Request.Context(), actingUser(c, c.Query("user_id")), optionalQuery(c, "app_id"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	var q usecases.ListSubscriptionsQuery
	if err := bindQuery(c, &q); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.subs.ListSubscriptions(c.Request.Context(), q)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.Subscriptions, result.Total, result.Page, result.PageSize)
}

func (h *SubscriptionHandler) ListEvents(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.subs.ListEvents(c.Request.Context(), id, ownerScope(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *SubscriptionHandler) ListPayments(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "subscription")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.subs.ListPayments(c.Request.Context(), id, ownerScope(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *SubscriptionHandler) SweepPeriodEnds(c *gin.Context) {
	var req SweepRequest
	if c.Request.ContentLength > 0 {
		if err := bindJSON(c, &req); err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
	}

	result, err := h.subs.SweepPeriodEnds(c.Request.Context(), req.Now)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	h.logger.Infow("period-end sweep triggered over HTTP",
		"scanned", result.Scanned,
		"canceled", result.Canceled,
		"expired", result.Expired,
		"failed", result.Failed,
	)
	utils.SuccessResponse(c, http.StatusOK, "", result)
}
