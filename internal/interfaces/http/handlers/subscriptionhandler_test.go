package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	subdto "github.com/orris-inc/billing/internal/application/subscription/dto"
	"github.com/orris-inc/billing/internal/application/subscription/usecases"
	"github.com/orris-inc/billing/internal/interfaces/http/handlers/testutil"
	"github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
)

func TestSubscriptionHandler_CreateActsForCaller(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		bodyUser string
		wantUser string
	}{
		{"user cannot act for someone else", "", "u-other", "u1"},
		{"admin acts for the named user", "admin", "u-other", "u-other"},
		{"admin without a named user acts for self", "admin", "", "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got usecases.CreateSubscriptionCommand
			svc := &mockSubscriptionService{
				createFn: func(_ context.Context, cmd usecases.CreateSubscriptionCommand) (*subdto.SubscriptionDTO, error) {
					got = cmd
					return &subdto.SubscriptionDTO{ID: "s1", UserID: cmd.UserID, Status: "active"}, nil
				},
			}
			h := NewSubscriptionHandler(svc, logger.Nop())

			c, w := testutil.NewTestContext(http.MethodPost, "/subscriptions", CreateSubscriptionRequest{
				PlanID: "p1", AppID: "A1", UserID: tt.bodyUser,
			})
			testutil.SetCaller(c, "u1", tt.role)

			h.CreateSubscription(c)

			require.Equal(t, http.StatusCreated, w.Code)
			assert.Equal(t, tt.wantUser, got.UserID)
			assert.Equal(t, "p1", got.PlanID)
			assert.Equal(t, "A1", got.AppID)
		})
	}
}

func TestSubscriptionHandler_GetScopesToOwner(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		err       error
		wantOwner string
		wantCode  int
	}{
		{"owner", "", nil, "u1", http.StatusOK},
		{"admin is unscoped", "admin", nil, "", http.StatusOK},
		{"not owned", "", errors.NewForbiddenError("subscription does not belong to user"), "u1", http.StatusForbidden},
		{"missing", "", errors.NewNotFoundError("subscription not found"), "u1", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var owner string
			svc := &mockSubscriptionService{
				getFn: func(_ context.Context, id, ownerID string) (*subdto.SubscriptionDTO, error) {
					owner = ownerID
					if tt.err != nil {
						return nil, tt.err
					}
					return &subdto.SubscriptionDTO{ID: id}, nil
				},
			}
			h := NewSubscriptionHandler(svc, logger.Nop())

			c, w := testutil.NewTestContext(http.MethodGet, "/subscriptions/s1", nil)
			testutil.SetURLParam(c, "id", "s1")
			testutil.SetCaller(c, "u1", tt.role)

			h.GetSubscription(c)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantOwner, owner)
		})
	}
}

func TestSubscriptionHandler_Cancel(t *testing.T) {
	var got usecases.CancelSubscriptionCommand
	svc := &mockSubscriptionService{
		cancelFn: func(_ context.Context, cmd usecases.CancelSubscriptionCommand) (*subdto.SubscriptionDTO, error) {
			got = cmd
			return &subdto.SubscriptionDTO{ID: cmd.SubscriptionID, CancelAtPeriodEnd: !cmd.Immediate}, nil
		},
	}
	h := NewSubscriptionHandler(svc, logger.Nop())

	t.Run("empty body defers to period end", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodPost, "/subscriptions/s1/cancel", nil)
		testutil.SetURLParam(c, "id", "s1")
		testutil.SetCaller(c, "u1", "")

		h.CancelSubscription(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, usecases.CancelSubscriptionCommand{SubscriptionID: "s1", UserID: "u1"}, got)
	})

	t.Run("immediate", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodPost, "/subscriptions/s1/cancel", CancelSubscriptionRequest{Immediate: true})
		testutil.SetURLParam(c, "id", "s1")
		testutil.SetCaller(c, "u1", "")

		h.CancelSubscription(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, got.Immediate)
	})
}

func TestSubscriptionHandler_UpdateStatusRejectsMalformedBody(t *testing.T) {
	h := NewSubscriptionHandler(&mockSubscriptionService{}, logger.Nop())

	c, w := testutil.NewTestContext(http.MethodPatch, "/admin/subscriptions/s1/status", nil)
	testutil.SetURLParam(c, "id", "s1")
	testutil.SetCaller(c, "a1", "admin")

	h.UpdateStatus(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, string(errors.ErrorTypeValidation), resp.Error.Type)
}

func TestSubscriptionHandler_ListSubscriptions(t *testing.T) {
	var got usecases.ListSubscriptionsQuery
	svc := &mockSubscriptionService{
		listFn: func(_ context.Context, q usecases.ListSubscriptionsQuery) (*subdto.ListSubscriptionsResult, error) {
			got = q
			return &subdto.ListSubscriptionsResult{
				Subscriptions: []*subdto.SubscriptionDTO{{ID: "s1"}, {ID: "s2"}},
				Total:         45,
				Page:          2,
				PageSize:      20,
			}, nil
		},
	}
	h := NewSubscriptionHandler(svc, logger.Nop())

	c, w := testutil.NewTestContext(http.MethodGet, "/admin/subscriptions", nil)
	testutil.SetQueryParams(c, map[string]string{"app_id": "A1", "status": "active", "page": "2"})
	testutil.SetCaller(c, "a1", "admin")

	h.ListSubscriptions(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.AppID)
	assert.Equal(t, "A1", *got.AppID)
	require.NotNil(t, got.Status)
	assert.Equal(t, "active", *got.Status)
	assert.Equal(t, 2, got.Page)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var list struct {
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Equal(t, int64(45), list.Total)
	assert.Equal(t, 3, list.TotalPages)
}

func TestSubscriptionHandler_SweepDefaultsToNow(t *testing.T) {
	var got time.Time
	svc := &mockSubscriptionService{
		sweepFn: func(_ context.Context, now time.Time) (*subdto.SweepResult, error) {
			got = now
			return &subdto.SweepResult{Scanned: 2, Canceled: 1, Expired: 1}, nil
		},
	}
	h := NewSubscriptionHandler(svc, logger.Nop())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/subscriptions/sweep", nil)
	testutil.SetCaller(c, "a1", "admin")

	h.SweepPeriodEnds(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, got.IsZero())
}
