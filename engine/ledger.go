/*
ledger.go - Append-only event ledger and seat reconstruction

PURPOSE:
  The Ledger is the immutable source of truth for asset history. Seat
  occupancy of a software asset is never stored as a counter; it is
  reconstructed on demand by folding over the ordered event stream.

WHY REPLAY INSTEAD OF A COUNTER?
  A counter field desynchronizes under concurrent or partially-failed
  operations. Replaying the immutable ledger is self-healing: the same
  fold over the same events always yields the same occupancy, and the
  full history doubles as the audit trail.

RECONSTRUCTION RULES:
  - ASSIGN increments the per-user tally keyed by ToUserID
  - RETURN decrements the per-user tally keyed by FromUserID
  - A user holds a seat iff their final tally is strictly positive
  - Tallies MAY dip negative mid-stream (historical imports can contain
    unbalanced returns) and later recover; no clamping during the fold,
    negatives are simply excluded from the positive count at the end

SEE ALSO:
  - store.go: EventStore persistence interface
  - entitlement.go: The writer that appends ASSIGN/RETURN events
*/
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// LEDGER - Validated append plus occupancy reconstruction
// =============================================================================

type Ledger struct {
	Events EventStore
	Assets AssetStore

	// Now is the event clock; overridable in tests.
	Now func() time.Time
}

func NewLedger(events EventStore, assets AssetStore) *Ledger {
	return &Ledger{Events: events, Assets: assets, Now: time.Now}
}

// Append validates and persists an event. A dangling asset reference is
// a ValidationError, ASSIGN and RETURN must carry their user reference,
// and MOVE must carry a destination location. ID and Timestamp are
// server-assigned when empty.
func (l *Ledger) Append(ctx context.Context, e Event) error {
	if _, err := l.Assets.GetAsset(ctx, e.AssetID); err != nil {
		if IsNotFound(err) {
			return Validationf("asset_id", "unknown asset %d", e.AssetID)
		}
		return err
	}

	switch e.Type {
	case EventAssign:
		if e.ToUserID == nil {
			return Validationf("to_user_id", "required for ASSIGN events")
		}
	case EventReturn:
		if e.FromUserID == nil {
			return Validationf("from_user_id", "required for RETURN events")
		}
	case EventMove:
		if e.ToLocationID == nil {
			return Validationf("to_location_id", "required for MOVE events")
		}
	case EventCreate, EventUpdate, EventRetire:
		// no extra references required
	default:
		return Validationf("event_type", "unknown event type %q", e.Type)
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.Now().UTC()
	}

	return l.Events.AppendEvent(ctx, e)
}

// History returns the full ordered event stream for an asset.
func (l *Ledger) History(ctx context.Context, id AssetID) ([]Event, error) {
	if _, err := l.Assets.GetAsset(ctx, id); err != nil {
		return nil, err
	}
	return l.Events.EventsByAsset(ctx, id)
}

// =============================================================================
// SEAT RECONSTRUCTION - Pure fold over ordered events
// =============================================================================

// SeatsUsed reconstructs current seat occupancy: the number of distinct
// users whose running tally is strictly positive. Replayable from empty
// state; invoking it any number of times yields the same result.
func (l *Ledger) SeatsUsed(ctx context.Context, id AssetID) (int, error) {
	tallies, err := l.holderTallies(ctx, id)
	if err != nil {
		return 0, err
	}
	used := 0
	for _, n := range tallies {
		if n > 0 {
			used++
		}
	}
	return used, nil
}

// CurrentHolders returns the set of users with a positive tally. Callers
// use it to restrict who may be offered in a "return seat" action.
func (l *Ledger) CurrentHolders(ctx context.Context, id AssetID) (map[UserID]int, error) {
	tallies, err := l.holderTallies(ctx, id)
	if err != nil {
		return nil, err
	}
	holders := make(map[UserID]int)
	for u, n := range tallies {
		if n > 0 {
			holders[u] = n
		}
	}
	return holders, nil
}

// HoldsSeat reports whether the user currently occupies at least one seat.
func (l *Ledger) HoldsSeat(ctx context.Context, id AssetID, user UserID) (bool, error) {
	holders, err := l.CurrentHolders(ctx, id)
	if err != nil {
		return false, err
	}
	_, ok := holders[user]
	return ok, nil
}

// holderTallies folds the event stream into per-user running counts.
// The raw tallies may be negative; see the package comment.
func (l *Ledger) holderTallies(ctx context.Context, id AssetID) (map[UserID]int, error) {
	events, err := l.Events.EventsByAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	tallies := make(map[UserID]int)
	for _, e := range events {
		switch e.Type {
		case EventAssign:
			if e.ToUserID != nil {
				tallies[*e.ToUserID]++
			}
		case EventReturn:
			if e.FromUserID != nil {
				tallies[*e.FromUserID]--
			}
		}
	}
	return tallies, nil
}
