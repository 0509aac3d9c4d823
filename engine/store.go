/*
store.go - Persistence interfaces for assets, events, and requests

PURPOSE:
  Defines the boundary between domain logic and storage. The engine
  mutates the asset record store and appends to the event ledger through
  these interfaces; implementations exist for SQLite (store/sqlite) and
  in-memory (engine/store).

APPEND-ONLY CONTRACT:
  EventStore has Append and read methods only. No Update, no Delete.
  Corrections to history are made by appending compensating events.

EXTERNAL DIRECTORIES:
  UserDirectory and LocationDirectory are collaborators the engine reads
  by id but does not own. The engine only ever needs lookup.

SEE ALSO:
  - engine/store/memory.go: In-memory implementation for tests/dev
  - store/sqlite/sqlite.go: SQLite implementation
*/
package engine

import "context"

// =============================================================================
// ASSET STORE - Mutable current-state projection
// =============================================================================

type AssetStore interface {
	// CreateAsset persists a new asset and assigns its ID.
	CreateAsset(ctx context.Context, a *Asset) error

	// GetAsset returns the asset or a NotFoundError.
	GetAsset(ctx context.Context, id AssetID) (*Asset, error)

	// GetAssetByTag returns the asset with the given tag, or nil if absent.
	GetAssetByTag(ctx context.Context, tag string) (*Asset, error)

	// UpdateAsset overwrites the stored record for a.ID.
	UpdateAsset(ctx context.Context, a *Asset) error

	// ListAssets returns assets matching the filter, ordered by ID.
	ListAssets(ctx context.Context, f AssetFilter) ([]*Asset, error)
}

// AssetFilter narrows ListAssets. Zero value matches everything.
type AssetFilter struct {
	Type       AssetType // "" = any
	Status     Status    // "" = any
	AssignedTo *UserID   // hardware custody match
}

// =============================================================================
// EVENT STORE - Append-only ledger persistence
// =============================================================================

// EventStore persists events. APPEND-ONLY: no update, no delete, ever.
type EventStore interface {
	// AppendEvent persists an event.
	AppendEvent(ctx context.Context, e Event) error

	// EventsByAsset returns all events for the asset ordered by timestamp
	// (insertion order breaks ties).
	EventsByAsset(ctx context.Context, id AssetID) ([]Event, error)
}

// =============================================================================
// REQUEST STORE
// =============================================================================

type RequestStore interface {
	CreateRequest(ctx context.Context, r *AssetRequest) error
	GetRequest(ctx context.Context, id RequestID) (*AssetRequest, error)

	// UpdateRequest overwrites the stored record. Called exactly once per
	// request, at resolution.
	UpdateRequest(ctx context.Context, r *AssetRequest) error

	ListRequests(ctx context.Context, status RequestStatus) ([]*AssetRequest, error)
}

// =============================================================================
// EXTERNAL DIRECTORIES - Read-only collaborators
// =============================================================================

type UserDirectory interface {
	// GetUser returns the user or a NotFoundError.
	GetUser(ctx context.Context, id UserID) (*User, error)
}

type LocationDirectory interface {
	// GetLocation returns the location or a NotFoundError.
	GetLocation(ctx context.Context, id LocationID) (*Location, error)
}
