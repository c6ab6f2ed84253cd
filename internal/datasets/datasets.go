package datasets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/fpacopilot/config"
	"github.com/vinodismyname/fpacopilot/internal/analytics"
	"github.com/vinodismyname/fpacopilot/internal/dataset"
)

// Handle pairs a loaded snapshot with its engine and idle-expiry metadata.
// Snapshots are read-only after loading, so callers share them freely.
type Handle struct {
	ID       string
	Snapshot *dataset.Snapshot
	Engine   *analytics.Engine
	LoadedAt time.Time

	mu        sync.Mutex
	expiresAt time.Time
}

// DatasetGate coordinates capacity for open datasets (backed by runtime.Controller).
type DatasetGate interface {
	AcquireDataset(ctx context.Context) error
	ReleaseDataset()
}

// PathValidator returns a canonical path for an allowed input, or an error when denied.
type PathValidator interface {
	ValidateOpenPath(path string) (string, error)
}

// LoaderFunc reads a workbook from a validated path.
type LoaderFunc func(ctx context.Context, path string) (*dataset.Snapshot, error)

// ErrHandleNotFound indicates an unknown or expired dataset ID.
var ErrHandleNotFound = errors.New("datasets: handle not found")

// ErrUnsupportedFormat is returned for paths that are not Excel workbooks.
var ErrUnsupportedFormat = errors.New("datasets: unsupported format")

// Manager caches loaded snapshots by handle ID with idle TTL eviction.
type Manager struct {
	mu           sync.RWMutex
	handles      map[string]*Handle
	ttl          time.Duration
	cleanupEvery time.Duration
	clock        func() time.Time
	gate         DatasetGate
	validator    PathValidator
	load         LoaderFunc
	stopCh       chan struct{}
	stopOnce     sync.Once
	cleanupWG    sync.WaitGroup
}

// Option customizes a Manager.
type Option func(*Manager)

// WithGate bounds the number of open datasets.
func WithGate(g DatasetGate) Option { return func(m *Manager) { m.gate = g } }

// WithValidator checks paths before they are loaded.
func WithValidator(v PathValidator) Option { return func(m *Manager) { m.validator = v } }

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option { return func(m *Manager) { m.clock = clock } }

// WithLoader replaces dataset.Load.
func WithLoader(fn LoaderFunc) Option { return func(m *Manager) { m.load = fn } }

// NewManager constructs a manager. Pass ttl or cleanupEvery <= 0 to use the
// defaults from config.
func NewManager(ttl, cleanupEvery time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = config.DefaultDatasetIdleTTL
	}
	if cleanupEvery <= 0 {
		cleanupEvery = config.DefaultDatasetCleanupPeriod
	}
	m := &Manager{
		handles:      make(map[string]*Handle),
		ttl:          ttl,
		cleanupEvery: cleanupEvery,
		clock:        time.Now,
		load:         dataset.Load,
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches periodic eviction of expired handles.
func (m *Manager) Start() {
	m.cleanupWG.Add(1)
	ticker := time.NewTicker(m.cleanupEvery)
	go func() {
		defer m.cleanupWG.Done()
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.EvictExpired()
			}
		}
	}()
}

// Close stops background cleanup and drops every handle.
func (m *Manager) Close(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stopCh) })
	done := make(chan struct{})
	go func() { m.cleanupWG.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.mu.Lock()
	n := len(m.handles)
	m.handles = make(map[string]*Handle)
	m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.release()
	}
	return nil
}

// Open validates path, loads the workbook and registers a handle for it.
func (m *Manager) Open(ctx context.Context, path string) (*Handle, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if m.validator != nil {
		canonical, err := m.validator.ValidateOpenPath(path)
		if err != nil {
			return nil, err
		}
		path = canonical
	}
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}

	snap, err := m.load(ctx, path)
	if err != nil {
		m.release()
		return nil, err
	}
	h := m.register(snap)
	zerolog.Ctx(ctx).Info().
		Str("dataset_id", h.ID).
		Str("path", path).
		Interface("rows", snap.Stats.Rows).
		Msg("dataset opened")
	return h, nil
}

// Adopt registers an already loaded snapshot.
func (m *Manager) Adopt(ctx context.Context, snap *dataset.Snapshot) (*Handle, error) {
	if snap == nil {
		return nil, fmt.Errorf("datasets: nil snapshot")
	}
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}
	return m.register(snap), nil
}

func (m *Manager) register(snap *dataset.Snapshot) *Handle {
	now := m.clock()
	h := &Handle{
		ID:        uuid.NewString(),
		Snapshot:  snap,
		Engine:    analytics.NewEngine(snap),
		LoadedAt:  now,
		expiresAt: now.Add(m.ttl),
	}
	m.mu.Lock()
	m.handles[h.ID] = h
	m.mu.Unlock()
	return h
}

// Get returns the handle when present and refreshes its idle TTL.
func (m *Manager) Get(id string) (*Handle, error) {
	m.mu.RLock()
	h, ok := m.handles[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrHandleNotFound
	}
	h.mu.Lock()
	h.expiresAt = m.clock().Add(m.ttl)
	h.mu.Unlock()
	return h, nil
}

// CloseHandle removes a handle by ID and releases its capacity.
func (m *Manager) CloseHandle(id string) error {
	m.mu.Lock()
	_, ok := m.handles[id]
	delete(m.handles, id)
	m.mu.Unlock()
	if !ok {
		return ErrHandleNotFound
	}
	m.release()
	return nil
}

// EvictExpired drops handles whose idle TTL has passed.
func (m *Manager) EvictExpired() {
	now := m.clock()
	m.mu.Lock()
	var evicted int
	for id, h := range m.handles {
		if h.Expired(now) {
			delete(m.handles, id)
			evicted++
		}
	}
	m.mu.Unlock()
	for i := 0; i < evicted; i++ {
		m.release()
	}
}

// IDs lists open handle IDs in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.handles))
	for id := range m.handles {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Count returns the current number of cached handles.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handles)
}

func (m *Manager) acquire(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	return m.gate.AcquireDataset(ctx)
}

func (m *Manager) release() {
	if m.gate == nil {
		return
	}
	m.gate.ReleaseDataset()
}

// Expired reports whether the handle has passed its idle TTL.
func (h *Handle) Expired(now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return now.After(h.expiresAt)
}

// ExpiresAt reports the current idle deadline.
func (h *Handle) ExpiresAt() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.expiresAt
}
