package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/billing/internal/infrastructure/repository"
	"github.com/orris-inc/billing/internal/infrastructure/testutil"
	apperrors "github.com/orris-inc/billing/internal/shared/errors"
	"github.com/orris-inc/billing/internal/shared/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return NewService(repository.NewAppRepository(db, logger.Nop()), func() time.Time { return now }, logger.Nop())
}

func TestService_CreateApp(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateApp(ctx, CreateAppCommand{Name: "Acme", Description: "main"})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	_, err = svc.CreateApp(ctx, CreateAppCommand{Name: "Acme"})
	assert.True(t, apperrors.IsBadRequestError(err))

	_, err = svc.CreateApp(ctx, CreateAppCommand{})
	assert.True(t, apperrors.IsValidationError(err))

	got, err := svc.GetApp(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	_, err = svc.GetApp(ctx, "missing")
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestService_UpdateAppDisplay(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateApp(ctx, CreateAppCommand{Name: "Acme"})
	require.NoError(t, err)

	desc := "new text"
	inactive := false
	updated, err := svc.UpdateAppDisplay(ctx, created.ID, UpdateAppDisplayCommand{Description: &desc, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.Name)
	assert.Equal(t, "new text", updated.Description)
	assert.False(t, updated.IsActive)

	list, err := svc.ListApps(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.PageSize)
}
