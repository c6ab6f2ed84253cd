package datasets

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vinodismyname/fpacopilot/internal/dataset"
	"github.com/vinodismyname/fpacopilot/internal/dataset/datasettest"
)

type fakeGate struct {
	acquireErr error
	acquires   atomic.Int64
	releases   atomic.Int64
}

func (g *fakeGate) AcquireDataset(context.Context) error {
	g.acquires.Add(1)
	return g.acquireErr
}
func (g *fakeGate) ReleaseDataset() { g.releases.Add(1) }

func emptySnapshot() *dataset.Snapshot {
	return dataset.NewSnapshot(nil, nil, nil, nil)
}

func TestAdoptGetClose(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(2*time.Second, time.Second, WithGate(gate))

	h, err := m.Adopt(context.Background(), emptySnapshot())
	require.NoError(t, err)
	require.NotEmpty(t, h.ID)
	require.NotNil(t, h.Engine)
	require.Equal(t, int64(1), gate.acquires.Load())
	require.Equal(t, []string{h.ID}, m.IDs())

	got, err := m.Get(h.ID)
	require.NoError(t, err)
	require.Same(t, h, got)

	require.NoError(t, m.CloseHandle(h.ID))
	require.Equal(t, 0, m.Count())
	require.Equal(t, int64(1), gate.releases.Load())
	require.ErrorIs(t, m.CloseHandle(h.ID), ErrHandleNotFound)

	_, err = m.Get(h.ID)
	require.ErrorIs(t, err, ErrHandleNotFound)
}

func TestTTLExpiryAndEviction(t *testing.T) {
	var now atomic.Int64
	now.Store(time.Now().UnixNano())
	clock := func() time.Time { return time.Unix(0, now.Load()) }

	gate := &fakeGate{}
	m := NewManager(50*time.Millisecond, 5*time.Millisecond, WithGate(gate), WithClock(clock))

	h, err := m.Adopt(context.Background(), emptySnapshot())
	require.NoError(t, err)

	// Access inside the TTL keeps the handle alive.
	now.Add(int64(40 * time.Millisecond))
	_, err = m.Get(h.ID)
	require.NoError(t, err)
	now.Add(int64(40 * time.Millisecond))
	m.EvictExpired()
	require.Equal(t, 1, m.Count())

	now.Add(int64(200 * time.Millisecond))
	m.EvictExpired()
	require.Equal(t, 0, m.Count())
	require.Equal(t, int64(1), gate.releases.Load())
}

func TestOpen_LoadsWorkbook(t *testing.T) {
	path := datasettest.Save(t, datasettest.Standard())
	m := NewManager(time.Minute, time.Minute)

	h, err := m.Open(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, path, h.Snapshot.Source)

	r, err := h.Engine.RevenueVsBudget("2025-06", "")
	require.NoError(t, err)
	require.InDelta(t, 120000, r.ActualUSD, 1e-6)
}

func TestOpen_UnsupportedFormat(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(time.Second, time.Second, WithGate(gate))

	_, err := m.Open(context.Background(), "not_excel.txt")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	require.Equal(t, int64(0), gate.acquires.Load())
}

func TestOpen_GateBusy(t *testing.T) {
	gate := &fakeGate{acquireErr: context.DeadlineExceeded}
	m := NewManager(time.Second, time.Second, WithGate(gate))

	_, err := m.Open(context.Background(), "sheet.xlsx")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, int64(1), gate.acquires.Load())
	require.Equal(t, int64(0), gate.releases.Load())
}

type denyValidator struct{}

func (denyValidator) ValidateOpenPath(string) (string, error) { return "", fmt.Errorf("denied") }

func TestOpen_PathValidatorDenied(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(time.Second, time.Second, WithGate(gate), WithValidator(denyValidator{}))

	_, err := m.Open(context.Background(), "ok.xlsx")
	require.Error(t, err)
	require.Equal(t, int64(0), gate.acquires.Load())
}

func TestOpen_LoadFailureReleasesGate(t *testing.T) {
	gate := &fakeGate{}
	boom := errors.New("boom")
	m := NewManager(time.Second, time.Second, WithGate(gate), WithLoader(func(context.Context, string) (*dataset.Snapshot, error) {
		return nil, boom
	}))

	_, err := m.Open(context.Background(), "ok.xlsx")
	require.ErrorIs(t, err, boom)
	require.Equal(t, int64(1), gate.acquires.Load())
	require.Equal(t, int64(1), gate.releases.Load())
	require.Equal(t, 0, m.Count())
}

func TestClose_ReleasesAll(t *testing.T) {
	gate := &fakeGate{}
	m := NewManager(time.Second, time.Millisecond, WithGate(gate))
	m.Start()
	for i := 0; i < 3; i++ {
		_, err := m.Adopt(context.Background(), emptySnapshot())
		require.NoError(t, err)
	}
	require.NoError(t, m.Close(context.Background()))
	require.Equal(t, 0, m.Count())
	require.Equal(t, int64(3), gate.releases.Load())
}
