package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/billing/internal/application/plan"
	"github.com/orris-inc/billing/internal/interfaces/http/middleware"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type PlanHandler struct {
	plans  planService
	logger logger.Interface
}

func NewPlanHandler(plans planService, logger logger.Interface) *PlanHandler {
	return &PlanHandler{plans: plans, logger: logger}
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var cmd plan.CreatePlanCommand
	if err := bindJSON(c, &cmd); err != nil {
		h.logger.Warnw("invalid request body for create plan", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.plans.CreatePlan(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Plan created successfully")
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, err := utils.ParseIDParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var cmd plan.UpdatePlanCommand
	if err := bindJSON(c, &cmd); err != nil {
		h.logger.Warnw("invalid request body for update plan", "plan_id", planID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.plans.UpdatePlan(c.Request.Context(), planID, cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Plan updated successfully", result)
}

func (h *PlanHandler) ArchivePlan(c *gin.Context) {
	planID, err := utils.ParseIDParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.plans.ArchivePlan(c.Request.Context(), planID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Plan archived successfully", result)
}

func (h *PlanHandler) PurgePlan(c *gin.Context) {
	planID, err := utils.ParseIDParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.plans.PurgePlan(c.Request.Context(), planID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, err := utils.ParseIDParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.plans.GetPlan(c.Request.Context(), planID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListPlans shows only purchasable plans to non-admin callers.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	var q plan.ListPlansQuery
	if err := bindQuery(c, &q); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if !middleware.CallerFrom(c).IsAdmin() {
		q.Status = ""
		q.IncludeInactive = false
	}

	result, err := h.plans.ListPlans(c.Request.Context(), q)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.Plans, result.Total, result.Page, result.PageSize)
}

func (h *PlanHandler) ListPlanOptions(c *gin.Context) {
	appID, err := utils.ParseIDParam(c, "id", "app")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.plans.ListPlanOptions(c.Request.Context(), appID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *PlanHandler) AddFeature(c *gin.Context) {
	planID, err := utils.ParseIDParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var in plan.FeatureInput
	if err := bindJSON(c, &in); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.plans.AddFeature(c.Request.Context(), planID, in)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "Feature added successfully")
}

func (h *PlanHandler) UpdateFeature(c *gin.Context) {
	planID, featureID, err := featureParams(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var in plan.FeatureInput
	if err := bindJSON(c, &in); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.plans.UpdateFeature(c.Request.Context(), planID, featureID, in)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Feature updated successfully", result)
}

func (h *PlanHandler) DeleteFeature(c *gin.Context) {
	planID, featureID, err := featureParams(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.plans.DeleteFeature(c.Request.Context(), planID, featureID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

func featureParams(c *gin.Context) (string, string, error) {
	planID, err := utils.ParseIDParam(c, "id", "plan")
	if err != nil {
		return "", "", err
	}
	featureID, err := utils.ParseIDParam(c, "feature_id", "feature")
	if err != nil {
		return "", "", err
	}
	return planID, featureID, nil
}
