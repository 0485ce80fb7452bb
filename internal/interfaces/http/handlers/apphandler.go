package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/billing/internal/application/app"
	"github.com/orris-inc/billing/internal/shared/logger"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type AppHandler struct {
	apps   appService
	logger logger.Interface
}

func NewAppHandler(apps appService, logger logger.Interface) *AppHandler {
	return &AppHandler{apps: apps, logger: logger}
}

func (h *AppHandler) CreateApp(c *gin.Context) {
	var cmd app.CreateAppCommand
	if err := bindJSON(c, &cmd); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.apps.CreateApp(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, result, "App created successfully")
}

func (h *AppHandler) GetApp(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "app")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.apps.GetApp(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func (h *AppHandler) ListApps(c *gin.Context) {
	result, err := h.apps.ListApps(c.Request.Context(), queryInt(c, "page"), queryInt(c, "page_size"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, result.Apps, result.Total, result.Page, result.PageSize)
}

func (h *AppHandler) UpdateAppDisplay(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id", "app")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var cmd app.UpdateAppDisplayCommand
	if err := bindJSON(c, &cmd); err != nil {
		h.logger.Warnw("invalid request body for update app", "app_id", id, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.apps.UpdateAppDisplay(c.Request.Context(), id, cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "App updated successfully", result)
}
