package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/fpacopilot/config"
)

func TestControllerAcquireRelease(t *testing.T) {
	limits := NewLimits(1, 1)
	controller := NewController(limits)

	require.Equal(t, limits, controller.LimitsSnapshot())

	require.NoError(t, controller.AcquireRequest(context.Background()))
	controller.ReleaseRequest()

	require.NoError(t, controller.AcquireDataset(context.Background()))
	require.ErrorIs(t, controller.AcquireDataset(context.Background()), ErrDatasetCapacity)
	controller.ReleaseDataset()
	require.NoError(t, controller.AcquireDataset(context.Background()))
}

func TestAcquireDataset_CanceledContext(t *testing.T) {
	ctrl := NewController(NewLimits(1, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, ctrl.AcquireDataset(ctx), context.Canceled)
}

func TestNewLimits_Defaults(t *testing.T) {
	l := NewLimits(0, -1)
	require.Equal(t, config.DefaultMaxConcurrentRequests, l.MaxConcurrentRequests)
	require.Equal(t, config.DefaultMaxOpenDatasets, l.MaxOpenDatasets)
}

func TestClampPageSize(t *testing.T) {
	l := NewLimits(1, 1)
	require.Equal(t, config.DefaultOpexPageSize, l.ClampPageSize(0))
	require.Equal(t, 7, l.ClampPageSize(7))
	require.Equal(t, config.MaxOpexPageSize, l.ClampPageSize(config.MaxOpexPageSize+1))
}
