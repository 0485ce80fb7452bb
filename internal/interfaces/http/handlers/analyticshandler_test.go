package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/billing/internal/application/analytics"
	"github.com/orris-inc/billing/internal/interfaces/http/handlers/testutil"
)

func TestAnalyticsHandler_ParsesWindow(t *testing.T) {
	tests := []struct {
		name      string
		params    map[string]string
		wantStart time.Time
		wantEnd   time.Time
		wantApp   *string
	}{
		{
			name:      "dates include the end day",
			params:    map[string]string{"start_date": "2024-01-01", "end_date": "2024-01-31"},
			wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "timestamps are taken as is",
			params:    map[string]string{"start_date": "2024-01-01T00:00:00Z", "end_date": "2024-01-15T12:00:00Z", "app_id": "A1"},
			wantStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			wantApp:   ptrTo("A1"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got analytics.Query
			h := NewAnalyticsHandler(&mockAnalyticsService{
				getFn: func(_ context.Context, q analytics.Query) (*analytics.Metrics, error) {
					got = q
					return &analytics.Metrics{}, nil
				},
			})

			c, w := testutil.NewTestContext(http.MethodGet, "/admin/analytics", nil)
			testutil.SetQueryParams(c, tt.params)

			h.GetAnalytics(c)

			require.Equal(t, http.StatusOK, w.Code)
			assert.True(t, tt.wantStart.Equal(got.StartDate), "start %s", got.StartDate)
			assert.True(t, tt.wantEnd.Equal(got.EndDate), "end %s", got.EndDate)
			assert.Equal(t, tt.wantApp, got.AppID)
		})
	}
}

func TestAnalyticsHandler_RejectsBadDate(t *testing.T) {
	h := NewAnalyticsHandler(&mockAnalyticsService{})

	c, w := testutil.NewTestContext(http.MethodGet, "/admin/analytics", nil)
	testutil.SetQueryParams(c, map[string]string{"start_date": "01/02/2024", "end_date": "2024-02-01"})

	h.GetAnalytics(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func ptrTo(s string) *string { return &s }
