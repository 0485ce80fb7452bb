package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/billing/internal/domain/subscription"
)

func TestAppRepository_CRUD(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	app, err := subscription.NewApp("Acme", "main app", testNow)
	require.NoError(t, err)
	require.NoError(t, r.apps.Create(ctx, app))

	got, err := r.apps.GetByID(ctx, app.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.Name())
	assert.True(t, got.IsActive())

	dup, err := subscription.NewApp("Acme", "", testNow)
	require.NoError(t, err)
	assert.ErrorIs(t, r.apps.Create(ctx, dup), subscription.ErrAppNameExists)

	exists, err := r.apps.ExistsByName(ctx, "Acme", app.ID())
	require.NoError(t, err)
	assert.False(t, exists)

	desc := "renamed"
	require.NoError(t, got.Update(nil, &desc, nil, testNow))
	require.NoError(t, r.apps.Update(ctx, got))

	list, total, err := r.apps.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "renamed", list[0].Description())

	missing, err := r.apps.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
