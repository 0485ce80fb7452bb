package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/billing/internal/application/analytics"
	"github.com/orris-inc/billing/internal/shared/biztime"
	"github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/utils"
)

type AnalyticsHandler struct {
	analytics analyticsService
}

func NewAnalyticsHandler(svc analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: svc}
}

// GetAnalytics accepts start_date and end_date as YYYY-MM-DD (end day
// included) or RFC 3339 timestamps (end exclusive).
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	start, err := parseBound(c.Query("start_date"), false)
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid start_date", err.Error()))
		return
	}
	end, err := parseBound(c.Query("end_date"), true)
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid end_date", err.Error()))
		return
	}

	result, err := h.analytics.GetAnalytics(c.Request.Context(), analytics.Query{
		StartDate: start,
		EndDate:   end,
		AppID:     optionalQuery(c, "app_id"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", result)
}

func parseBound(s string, end bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := biztime.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
