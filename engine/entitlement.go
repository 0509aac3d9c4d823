/*
entitlement.go - Assignment/return/retire state machine

PURPOSE:
  Maintains custody. Hardware has exclusive custody (one assignee or
  none); software has a pooled seat model where occupancy is the set of
  holders reconstructed from the event ledger. Every transition appends
  exactly one event atomically with the asset record mutation it
  documents.

STATE MACHINES:
  Hardware: Unassigned <-> Assigned, terminal Retired
  Software: Open (seats available) <-> Full, terminal Retired

CONCURRENCY:
  Operations on different assets run fully in parallel. Operations on
  the same asset are serialized through a per-asset mutex shared with
  the catalog (locks.go): assign, return, and retire all
  read-then-write custody state, and a lost update would violate the
  capacity or exclusivity invariants. The capacity check reads the
  ledger under the lock, so it sees a fixed snapshot rather than a
  moving target.

SEE ALSO:
  - ledger.go: Seat reconstruction consulted for capacity checks
  - request.go: Approval workflow that invokes Assign on binding
*/
package engine

import "context"

// =============================================================================
// ENTITLEMENT SERVICE
// =============================================================================

type Entitlements struct {
	Assets AssetStore
	Ledger *Ledger
	Users  UserDirectory
	Locks  *AssetLocker
}

func NewEntitlements(assets AssetStore, ledger *Ledger, users UserDirectory, locks *AssetLocker) *Entitlements {
	return &Entitlements{
		Assets: assets,
		Ledger: ledger,
		Users:  users,
		Locks:  locks,
	}
}

// =============================================================================
// ASSIGN
// =============================================================================

// Assign grants custody (hardware) or a seat (software) to userID.
//
// Hardware fails with ConflictError when already assigned or retired.
// Software fails with CapacityError when the seat pool is exhausted and
// ConflictError when retired. The target user must exist and be active.
// Returns the updated asset with SeatsUsed materialized.
func (s *Entitlements) Assign(ctx context.Context, assetID AssetID, userID, actorID UserID, notes string) (*Asset, error) {
	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, Validationf("user_id", "unknown user %q", userID)
	}
	if !user.IsActive {
		return nil, Validationf("user_id", "user %q is inactive", userID)
	}

	lock := s.Locks.ForAsset(assetID)
	lock.Lock()
	defer lock.Unlock()

	asset, err := s.Assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset.IsRetired() {
		return nil, Conflictf("asset %s is retired", asset.AssetTag)
	}

	if asset.IsHardware() {
		if asset.AssignedTo != nil {
			return nil, Conflictf("asset %s is already assigned to %s", asset.AssetTag, *asset.AssignedTo)
		}
		asset.AssignedTo = &userID
		asset.Status = StatusAssigned
	} else {
		if asset.SeatsTotal != nil {
			used, err := s.Ledger.SeatsUsed(ctx, assetID)
			if err != nil {
				return nil, err
			}
			if used >= *asset.SeatsTotal {
				return nil, &CapacityError{
					Message:   "no seats available on " + asset.AssetTag,
					Limit:     *asset.SeatsTotal,
					Requested: used + 1,
				}
			}
		}
	}

	if err := s.Ledger.Append(ctx, Event{
		AssetID:  assetID,
		Type:     EventAssign,
		ToUserID: &userID,
		ActorID:  actorID,
		Notes:    notes,
	}); err != nil {
		return nil, err
	}

	if asset.IsHardware() {
		if err := s.Assets.UpdateAsset(ctx, asset); err != nil {
			return nil, err
		}
	}
	return s.materialize(ctx, asset)
}

// =============================================================================
// RETURN
// =============================================================================

// Return releases custody. For hardware the holder is derived from the
// record and userID is ignored. For software userID is required and must
// currently hold a seat.
func (s *Entitlements) Return(ctx context.Context, assetID AssetID, userID *UserID, actorID UserID, notes string) (*Asset, error) {
	lock := s.Locks.ForAsset(assetID)
	lock.Lock()
	defer lock.Unlock()

	asset, err := s.Assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if asset.IsHardware() {
		return s.returnHardwareLocked(ctx, asset, actorID, notes)
	}
	return s.returnSeatLocked(ctx, asset, userID, actorID, notes)
}

func (s *Entitlements) returnHardwareLocked(ctx context.Context, asset *Asset, actorID UserID, notes string) (*Asset, error) {
	if asset.AssignedTo == nil {
		return nil, Conflictf("asset %s is not assigned", asset.AssetTag)
	}
	holder := *asset.AssignedTo
	asset.AssignedTo = nil
	if asset.Status != StatusRetired {
		asset.Status = StatusInStock
	}

	if err := s.Ledger.Append(ctx, Event{
		AssetID:    asset.ID,
		Type:       EventReturn,
		FromUserID: &holder,
		ActorID:    actorID,
		Notes:      notes,
	}); err != nil {
		return nil, err
	}
	if err := s.Assets.UpdateAsset(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *Entitlements) returnSeatLocked(ctx context.Context, asset *Asset, userID *UserID, actorID UserID, notes string) (*Asset, error) {
	if userID == nil {
		return nil, Validationf("user_id", "required to return a software seat")
	}
	holds, err := s.Ledger.HoldsSeat(ctx, asset.ID, *userID)
	if err != nil {
		return nil, err
	}
	if !holds {
		return nil, Conflictf("user %s holds no seat on %s", *userID, asset.AssetTag)
	}

	if err := s.Ledger.Append(ctx, Event{
		AssetID:    asset.ID,
		Type:       EventReturn,
		FromUserID: userID,
		ActorID:    actorID,
		Notes:      notes,
	}); err != nil {
		return nil, err
	}
	return s.materialize(ctx, asset)
}

// =============================================================================
// RETIRE
// =============================================================================

// Retire moves an asset to the terminal RETIRED status. Assigned
// hardware is implicitly returned first. Further Assign calls fail with
// ConflictError until an administrative edit reactivates the asset.
func (s *Entitlements) Retire(ctx context.Context, assetID AssetID, actorID UserID, notes string) (*Asset, error) {
	lock := s.Locks.ForAsset(assetID)
	lock.Lock()
	defer lock.Unlock()

	asset, err := s.Assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset.IsRetired() {
		return nil, Conflictf("asset %s is already retired", asset.AssetTag)
	}

	if asset.IsHardware() && asset.AssignedTo != nil {
		if _, err := s.returnHardwareLocked(ctx, asset, actorID, "returned automatically before retirement"); err != nil {
			return nil, err
		}
	}

	asset.Status = StatusRetired
	if err := s.Ledger.Append(ctx, Event{
		AssetID: assetID,
		Type:    EventRetire,
		ActorID: actorID,
		Notes:   notes,
	}); err != nil {
		return nil, err
	}
	if err := s.Assets.UpdateAsset(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// =============================================================================
// MOVE
// =============================================================================

// Move relocates hardware between locations and records a MOVE event.
func (s *Entitlements) Move(ctx context.Context, assetID AssetID, to LocationID, actorID UserID, notes string) (*Asset, error) {
	lock := s.Locks.ForAsset(assetID)
	lock.Lock()
	defer lock.Unlock()

	asset, err := s.Assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !asset.IsHardware() {
		return nil, Validationf("asset_type", "only hardware can be moved")
	}

	from := asset.LocationID
	asset.LocationID = &to

	if err := s.Ledger.Append(ctx, Event{
		AssetID:        assetID,
		Type:           EventMove,
		FromLocationID: from,
		ToLocationID:   &to,
		ActorID:        actorID,
		Notes:          notes,
	}); err != nil {
		return nil, err
	}
	if err := s.Assets.UpdateAsset(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// =============================================================================
// AUTO-RETURN ON DEACTIVATION
// =============================================================================

// DeactivationResult lists the asset tags released when a user was
// deactivated in the external directory.
type DeactivationResult struct {
	ReturnedAssets []string
}

// HandleUserDeactivated releases every custody the user still has:
// hardware assigned to them is returned, and one RETURN event is
// appended per seat they hold, so a user assigned the same pool twice
// is drained to a zero tally. The actor on all events is the system
// actor. Returns the tags of every affected asset.
func (s *Entitlements) HandleUserDeactivated(ctx context.Context, userID UserID) (*DeactivationResult, error) {
	result := &DeactivationResult{ReturnedAssets: []string{}}
	note := "automatic return: user deactivated"

	// Hardware in the user's custody.
	hardware, err := s.Assets.ListAssets(ctx, AssetFilter{Type: TypeHardware, AssignedTo: &userID})
	if err != nil {
		return nil, err
	}
	for _, a := range hardware {
		if _, err := s.Return(ctx, a.ID, nil, SystemActor, note); err != nil {
			return nil, err
		}
		result.ReturnedAssets = append(result.ReturnedAssets, a.AssetTag)
	}

	// Software seats the user still holds.
	software, err := s.Assets.ListAssets(ctx, AssetFilter{Type: TypeSoftware})
	if err != nil {
		return nil, err
	}
	for _, a := range software {
		holders, err := s.Ledger.CurrentHolders(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		seats := holders[userID]
		if seats <= 0 {
			continue
		}
		uid := userID
		for i := 0; i < seats; i++ {
			if _, err := s.Return(ctx, a.ID, &uid, SystemActor, note); err != nil {
				return nil, err
			}
		}
		result.ReturnedAssets = append(result.ReturnedAssets, a.AssetTag)
	}

	return result, nil
}

// materialize refreshes the derived seat count on a software asset
// before handing it back to the caller.
func (s *Entitlements) materialize(ctx context.Context, asset *Asset) (*Asset, error) {
	if asset.IsSoftware() {
		used, err := s.Ledger.SeatsUsed(ctx, asset.ID)
		if err != nil {
			return nil, err
		}
		asset.SeatsUsed = used
	}
	return asset, nil
}
