// Package store provides in-memory implementations of the engine
// storage interfaces, used by tests and the dev server.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fleetline/asset-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements engine.AssetStore, engine.EventStore,
// engine.RequestStore, engine.UserDirectory, and
// engine.LocationDirectory behind one mutex.
//
// Events are stored in insertion order per asset; the ledger assigns
// non-decreasing timestamps, so insertion order is timestamp order.
type Memory struct {
	mu sync.RWMutex

	assets      map[engine.AssetID]engine.Asset
	assetsByTag map[string]engine.AssetID
	nextAssetID engine.AssetID

	events map[engine.AssetID][]engine.Event

	requests      map[engine.RequestID]engine.AssetRequest
	nextRequestID engine.RequestID

	users     map[engine.UserID]engine.User
	locations map[engine.LocationID]engine.Location
}

func NewMemory() *Memory {
	return &Memory{
		assets:      make(map[engine.AssetID]engine.Asset),
		assetsByTag: make(map[string]engine.AssetID),
		events:      make(map[engine.AssetID][]engine.Event),
		requests:    make(map[engine.RequestID]engine.AssetRequest),
		users:       make(map[engine.UserID]engine.User),
		locations:   make(map[engine.LocationID]engine.Location),
	}
}

// =============================================================================
// ASSET STORE
// =============================================================================

func (m *Memory) CreateAsset(_ context.Context, a *engine.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.assetsByTag[a.AssetTag]; exists {
		return engine.Validationf("asset_tag", "tag %q already exists", a.AssetTag)
	}
	m.nextAssetID++
	a.ID = m.nextAssetID
	m.assets[a.ID] = *a
	m.assetsByTag[a.AssetTag] = a.ID
	return nil
}

func (m *Memory) GetAsset(_ context.Context, id engine.AssetID) (*engine.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assets[id]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "asset", ID: fmt.Sprint(id)}
	}
	cp := a
	return &cp, nil
}

func (m *Memory) GetAssetByTag(_ context.Context, tag string) (*engine.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.assetsByTag[tag]
	if !ok {
		return nil, nil
	}
	a := m.assets[id]
	cp := a
	return &cp, nil
}

func (m *Memory) UpdateAsset(_ context.Context, a *engine.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.assets[a.ID]
	if !ok {
		return &engine.NotFoundError{Kind: "asset", ID: fmt.Sprint(a.ID)}
	}
	if old.AssetTag != a.AssetTag {
		if _, exists := m.assetsByTag[a.AssetTag]; exists {
			return engine.Validationf("asset_tag", "tag %q already exists", a.AssetTag)
		}
		delete(m.assetsByTag, old.AssetTag)
		m.assetsByTag[a.AssetTag] = a.ID
	}
	m.assets[a.ID] = *a
	return nil
}

func (m *Memory) ListAssets(_ context.Context, f engine.AssetFilter) ([]*engine.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*engine.Asset
	for id := engine.AssetID(1); id <= m.nextAssetID; id++ {
		a, ok := m.assets[id]
		if !ok {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.AssignedTo != nil && (a.AssignedTo == nil || *a.AssignedTo != *f.AssignedTo) {
			continue
		}
		cp := a
		out = append(out, &cp)
	}
	return out, nil
}

// =============================================================================
// EVENT STORE - Append-only
// =============================================================================

func (m *Memory) AppendEvent(_ context.Context, e engine.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.AssetID] = append(m.events[e.AssetID], e)
	return nil
}

func (m *Memory) EventsByAsset(_ context.Context, id engine.AssetID) ([]engine.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.events[id]
	out := make([]engine.Event, len(src))
	copy(out, src)
	return out, nil
}

// =============================================================================
// REQUEST STORE
// =============================================================================

func (m *Memory) CreateRequest(_ context.Context, r *engine.AssetRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextRequestID++
	r.ID = m.nextRequestID
	m.requests[r.ID] = *r
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id engine.RequestID) (*engine.AssetRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "request", ID: fmt.Sprint(id)}
	}
	cp := r
	return &cp, nil
}

func (m *Memory) UpdateRequest(_ context.Context, r *engine.AssetRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.requests[r.ID]; !ok {
		return &engine.NotFoundError{Kind: "request", ID: fmt.Sprint(r.ID)}
	}
	m.requests[r.ID] = *r
	return nil
}

func (m *Memory) ListRequests(_ context.Context, status engine.RequestStatus) ([]*engine.AssetRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*engine.AssetRequest
	for id := engine.RequestID(1); id <= m.nextRequestID; id++ {
		r, ok := m.requests[id]
		if !ok {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		cp := r
		out = append(out, &cp)
	}
	return out, nil
}

// =============================================================================
// DIRECTORIES
// =============================================================================

func (m *Memory) SaveUser(_ context.Context, u engine.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

func (m *Memory) ListUsers(_ context.Context) ([]*engine.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	out := make([]*engine.User, 0, len(ids))
	for _, id := range ids {
		cp := m.users[engine.UserID(id)]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) GetUser(_ context.Context, id engine.UserID) (*engine.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "user", ID: string(id)}
	}
	cp := u
	return &cp, nil
}

func (m *Memory) SaveLocation(_ context.Context, l engine.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[l.ID] = l
	return nil
}

func (m *Memory) GetLocation(_ context.Context, id engine.LocationID) (*engine.Location, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.locations[id]
	if !ok {
		return nil, &engine.NotFoundError{Kind: "location", ID: string(id)}
	}
	cp := l
	return &cp, nil
}

// Compile-time interface checks
var (
	_ engine.AssetStore        = (*Memory)(nil)
	_ engine.EventStore        = (*Memory)(nil)
	_ engine.RequestStore      = (*Memory)(nil)
	_ engine.UserDirectory     = (*Memory)(nil)
	_ engine.LocationDirectory = (*Memory)(nil)
)
