package portal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TSC-DEV-2026/ZionDocs-Frontend/app/portal"
	"github.com/TSC-DEV-2026/ZionDocs-Frontend/core/document"
)

func TestNewApp(t *testing.T) {
	t.Parallel()

	t.Run("assembles every component with defaults", func(t *testing.T) {
		t.Parallel()

		app, err := portal.NewApp(context.Background())
		require.NoError(t, err)
		require.NotNil(t, app.Sessions())
		require.NotNil(t, app.Auth())
		require.NotNil(t, app.Catalog())
		require.NotNil(t, app.Retrieval())
		require.NotNil(t, app.Logger())
	})

	t.Run("rejects nil option values", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()

		_, err := portal.NewApp(ctx, portal.WithLogger(nil))
		require.Error(t, err)

		_, err = portal.NewApp(ctx, portal.WithClient(nil))
		require.Error(t, err)

		_, err = portal.NewApp(ctx, portal.WithFlagStore(nil))
		require.Error(t, err)

		_, err = portal.NewApp(ctx, portal.WithSignal(nil))
		require.Error(t, err)

		_, err = portal.NewApp(ctx, portal.WithNotifier(nil))
		require.Error(t, err)
	})

	t.Run("discovery needs an authenticated user", func(t *testing.T) {
		t.Parallel()

		app, err := portal.NewApp(context.Background())
		require.NoError(t, err)

		_, err = app.Discover(document.CategoryPayslip, "", "")
		require.Error(t, err)
	})
}

func TestRunStopsWithContext(t *testing.T) {
	t.Parallel()

	app, err := portal.NewApp(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, app.Run(ctx), context.Canceled)
}
