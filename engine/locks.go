/*
locks.go - Per-asset lock registry

PURPOSE:
  Hands out one mutex per asset id so that every read-modify-write
  operation on the same asset is serialized, no matter which service
  performs it. Entitlements and Catalog share a single registry;
  operations on different assets run fully in parallel.

SEE ALSO:
  - entitlement.go: assign/return/retire/move take the asset lock
  - catalog.go: edits (seat totals, warranty extension) take the same lock
*/
package engine

import "sync"

type AssetLocker struct {
	mu    sync.Mutex
	locks map[AssetID]*sync.Mutex
}

func NewAssetLocker() *AssetLocker {
	return &AssetLocker{locks: make(map[AssetID]*sync.Mutex)}
}

// ForAsset returns the mutex serializing operations on one asset.
func (l *AssetLocker) ForAsset(id AssetID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}
