package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetline/asset-engine/engine"
	"github.com/fleetline/asset-engine/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestLedger(t *testing.T) (*engine.Ledger, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return engine.NewLedger(mem, mem), mem
}

func seedSoftware(t *testing.T, mem *store.Memory, tag string, seats *int) *engine.Asset {
	t.Helper()
	a := &engine.Asset{
		AssetTag:     tag,
		Type:         engine.TypeSoftware,
		Subscription: "Acme Suite",
		SeatsTotal:   seats,
		Status:       engine.StatusInStock,
	}
	require.NoError(t, mem.CreateAsset(context.Background(), a))
	return a
}

func seedHardware(t *testing.T, mem *store.Memory, tag string) *engine.Asset {
	t.Helper()
	a := &engine.Asset{
		AssetTag: tag,
		Type:     engine.TypeHardware,
		Category: engine.CategoryLaptop,
		Status:   engine.StatusInStock,
	}
	require.NoError(t, mem.CreateAsset(context.Background(), a))
	return a
}

func uid(s string) *engine.UserID {
	u := engine.UserID(s)
	return &u
}

func assign(assetID engine.AssetID, user string) engine.Event {
	return engine.Event{AssetID: assetID, Type: engine.EventAssign, ToUserID: uid(user), ActorID: "admin"}
}

func ret(assetID engine.AssetID, user string) engine.Event {
	return engine.Event{AssetID: assetID, Type: engine.EventReturn, FromUserID: uid(user), ActorID: "admin"}
}

// =============================================================================
// APPEND VALIDATION
// =============================================================================

func TestLedger_Append_UnknownAsset_Rejected(t *testing.T) {
	// GIVEN: No assets exist
	// WHEN: Appending an event for asset 999
	// THEN: ValidationError on asset_id, nothing persisted

	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	err := ledger.Append(ctx, assign(999, "u-1"))
	assert.Error(t, err)
	assert.True(t, engine.IsValidation(err))

	var verr *engine.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "asset_id", verr.Field)
}

func TestLedger_Append_AssignWithoutUser_Rejected(t *testing.T) {
	// GIVEN: A software asset
	// WHEN: Appending an ASSIGN event with no target user
	// THEN: ValidationError

	ledger, mem := newTestLedger(t)
	ctx := context.Background()
	a := seedSoftware(t, mem, "SW-001", nil)

	err := ledger.Append(ctx, engine.Event{AssetID: a.ID, Type: engine.EventAssign, ActorID: "admin"})
	assert.True(t, engine.IsValidation(err))
}

func TestLedger_Append_UnknownType_Rejected(t *testing.T) {
	ledger, mem := newTestLedger(t)
	ctx := context.Background()
	a := seedSoftware(t, mem, "SW-001", nil)

	err := ledger.Append(ctx, engine.Event{AssetID: a.ID, Type: "TELEPORT", ActorID: "admin"})
	assert.True(t, engine.IsValidation(err))
}

func TestLedger_Append_AssignsIDAndTimestamp(t *testing.T) {
	// GIVEN: An event with no ID or timestamp
	// WHEN: Appended
	// THEN: The persisted event carries a server-assigned UUID and clock time

	ledger, mem := newTestLedger(t)
	ctx := context.Background()
	fixed := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	ledger.Now = func() time.Time { return fixed }

	a := seedSoftware(t, mem, "SW-001", nil)
	require.NoError(t, ledger.Append(ctx, assign(a.ID, "u-1")))

	events, err := ledger.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
	assert.Equal(t, fixed, events[0].Timestamp)
}

// =============================================================================
// SEAT RECONSTRUCTION
// =============================================================================

func TestLedger_SeatsUsed_AssignReturn_RoundTrip(t *testing.T) {
	// GIVEN: One user assigned and then returned
	// WHEN: Reconstructing occupancy
	// THEN: Zero seats used, user holds nothing

	ledger, mem := newTestLedger(t)
	ctx := context.Background()
	a := seedSoftware(t, mem, "SW-001", nil)

	require.NoError(t, ledger.Append(ctx, assign(a.ID, "u-1")))
	require.NoError(t, ledger.Append(ctx, ret(a.ID, "u-1")))

	used, err := ledger.SeatsUsed(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, used)

	holds, err := ledger.HoldsSeat(ctx, a.ID, "u-1")
	require.NoError(t, err)
	assert.False(t, holds)
}

func TestLedger_SeatsUsed_CountsDistinctPositiveHolders(t *testing.T) {
	// GIVEN: u-1 assigned twice, u-2 assigned once, u-1 returned once
	// THEN: Both still hold seats (u-1 tally 1, u-2 tally 1), SeatsUsed = 2

	ledger, mem := newTestLedger(t)
	ctx := context.Background()
	a := seedSoftware(t, mem, "SW-001", nil)

	require.NoError(t, ledger.Append(ctx, assign(a.ID, "u-1")))
	require.NoError(t, ledger.Append(ctx, assign(a.ID, "u-1")))
	require.NoError(t, ledger.Append(ctx, assign(a.ID, "u-2")))
	require.NoError(t, ledger.Append(ctx, ret(a.ID, "u-1")))

	used, err := ledger.SeatsUsed(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, used)

	holders, err := ledger.CurrentHolders(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, map[engine.UserID]int{"u-1": 1, "u-2": 1}, holders)
}

func TestLedger_SeatsUsed_NegativeTally_ExcludedNotClamped(t *testing.T) {
	// GIVEN: A return with no matching assign (unbalanced historical import)
	// WHEN: The same user is later assigned once
	// THEN: The tally recovers to zero, still not a holder

	ledger, mem := newTestLedger(t)
	ctx := context.Background()
	a := seedSoftware(t, mem, "SW-001", nil)

	require.NoError(t, ledger.Append(ctx, ret(a.ID, "u-1")))

	used, err := ledger.SeatsUsed(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, used, "negative tally must not count as occupancy")

	require.NoError(t, ledger.Append(ctx, assign(a.ID, "u-1")))

	used, err = ledger.SeatsUsed(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, used, "tally recovered to zero is still not positive")

	require.NoError(t, ledger.Append(ctx, assign(a.ID, "u-1")))

	used, err = ledger.SeatsUsed(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, used)
}

func TestLedger_SeatsUsed_ReplayIsIdempotent(t *testing.T) {
	// Replaying the same ledger any number of times yields the same answer.

	ledger, mem := newTestLedger(t)
	ctx := context.Background()
	a := seedSoftware(t, mem, "SW-001", nil)

	require.NoError(t, ledger.Append(ctx, assign(a.ID, "u-1")))
	require.NoError(t, ledger.Append(ctx, assign(a.ID, "u-2")))
	require.NoError(t, ledger.Append(ctx, ret(a.ID, "u-2")))

	first, err := ledger.SeatsUsed(ctx, a.ID)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ledger.SeatsUsed(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestLedger_History_OrderedStream(t *testing.T) {
	// Events come back in append order.

	ledger, mem := newTestLedger(t)
	ctx := context.Background()
	a := seedHardware(t, mem, "HW-001")

	require.NoError(t, ledger.Append(ctx, engine.Event{AssetID: a.ID, Type: engine.EventCreate, ActorID: "admin"}))
	require.NoError(t, ledger.Append(ctx, assign(a.ID, "u-1")))
	require.NoError(t, ledger.Append(ctx, ret(a.ID, "u-1")))

	events, err := ledger.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, engine.EventCreate, events[0].Type)
	assert.Equal(t, engine.EventAssign, events[1].Type)
	assert.Equal(t, engine.EventReturn, events[2].Type)
}
