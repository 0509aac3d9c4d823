package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetline/asset-engine/engine"
	"github.com/fleetline/asset-engine/engine/store"
)

func uid(s string) *engine.UserID {
	u := engine.UserID(s)
	return &u
}

// =============================================================================
// ASSET STORE
// =============================================================================

func TestMemory_CreateAsset_AssignsSequentialIDs(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	a := &engine.Asset{AssetTag: "HW-001", Type: engine.TypeHardware, Status: engine.StatusInStock}
	b := &engine.Asset{AssetTag: "HW-002", Type: engine.TypeHardware, Status: engine.StatusInStock}
	require.NoError(t, mem.CreateAsset(ctx, a))
	require.NoError(t, mem.CreateAsset(ctx, b))

	assert.Equal(t, engine.AssetID(1), a.ID)
	assert.Equal(t, engine.AssetID(2), b.ID)
}

func TestMemory_CreateAsset_DuplicateTag_Rejected(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.CreateAsset(ctx, &engine.Asset{AssetTag: "HW-001", Type: engine.TypeHardware}))
	err := mem.CreateAsset(ctx, &engine.Asset{AssetTag: "HW-001", Type: engine.TypeHardware})
	assert.True(t, engine.IsValidation(err))
}

func TestMemory_GetAssetByTag_AbsentIsNilNil(t *testing.T) {
	mem := store.NewMemory()
	got, err := mem.GetAssetByTag(context.Background(), "HW-404")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_GetAsset_ReturnsCopy(t *testing.T) {
	// Mutating a returned asset must not leak into the store.

	mem := store.NewMemory()
	ctx := context.Background()

	a := &engine.Asset{AssetTag: "HW-001", Type: engine.TypeHardware, Status: engine.StatusInStock}
	require.NoError(t, mem.CreateAsset(ctx, a))

	got, err := mem.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	got.Status = engine.StatusRetired

	again, err := mem.GetAsset(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusInStock, again.Status)
}

func TestMemory_ListAssets_FiltersAndIDOrder(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	holder := engine.UserID("u-1")
	require.NoError(t, mem.CreateAsset(ctx, &engine.Asset{AssetTag: "HW-001", Type: engine.TypeHardware, Status: engine.StatusAssigned, AssignedTo: &holder}))
	require.NoError(t, mem.CreateAsset(ctx, &engine.Asset{AssetTag: "SW-001", Type: engine.TypeSoftware, Status: engine.StatusInStock}))
	require.NoError(t, mem.CreateAsset(ctx, &engine.Asset{AssetTag: "HW-002", Type: engine.TypeHardware, Status: engine.StatusInStock}))

	all, err := mem.ListAssets(ctx, engine.AssetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "HW-001", all[0].AssetTag)
	assert.Equal(t, "HW-002", all[2].AssetTag)

	hw, err := mem.ListAssets(ctx, engine.AssetFilter{Type: engine.TypeHardware, Status: engine.StatusInStock})
	require.NoError(t, err)
	require.Len(t, hw, 1)
	assert.Equal(t, "HW-002", hw[0].AssetTag)

	mine, err := mem.ListAssets(ctx, engine.AssetFilter{AssignedTo: uid("u-1")})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "HW-001", mine[0].AssetTag)
}

// =============================================================================
// EVENT STORE
// =============================================================================

func TestMemory_Events_AppendOrderPreserved(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	for _, id := range []string{"e-1", "e-2", "e-3"} {
		require.NoError(t, mem.AppendEvent(ctx, engine.Event{ID: id, AssetID: 1, Type: engine.EventUpdate, ActorID: "admin"}))
	}

	events, err := mem.EventsByAsset(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "e-1", events[0].ID)
	assert.Equal(t, "e-3", events[2].ID)

	other, err := mem.EventsByAsset(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)
}

// =============================================================================
// REQUEST STORE
// =============================================================================

func TestMemory_Requests_RoundTripAndStatusFilter(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	r1 := &engine.AssetRequest{RequestType: "new_asset", AssetTypeRequested: engine.TypeHardware, Description: "laptop", RequesterID: "u-1", Status: engine.RequestPending}
	r2 := &engine.AssetRequest{RequestType: "new_asset", AssetTypeRequested: engine.TypeSoftware, Description: "license", RequesterID: "u-2", Status: engine.RequestPending}
	require.NoError(t, mem.CreateRequest(ctx, r1))
	require.NoError(t, mem.CreateRequest(ctx, r2))

	r1.Status = engine.RequestDenied
	require.NoError(t, mem.UpdateRequest(ctx, r1))

	pending, err := mem.ListRequests(ctx, engine.RequestPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, r2.ID, pending[0].ID)

	got, err := mem.GetRequest(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.RequestDenied, got.Status)
}

// =============================================================================
// DIRECTORIES
// =============================================================================

func TestMemory_Users_SaveListAndLookup(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveUser(ctx, engine.User{ID: "u-b", Name: "Theo", Role: engine.RoleEmployee, IsActive: true}))
	require.NoError(t, mem.SaveUser(ctx, engine.User{ID: "u-a", Name: "Nora", Role: engine.RoleAdmin, IsActive: true}))

	users, err := mem.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, engine.UserID("u-a"), users[0].ID, "listed in id order")

	got, err := mem.GetUser(ctx, "u-b")
	require.NoError(t, err)
	assert.Equal(t, "Theo", got.Name)

	_, err = mem.GetUser(ctx, "u-404")
	assert.True(t, engine.IsNotFound(err))

	// Save is an upsert.
	require.NoError(t, mem.SaveUser(ctx, engine.User{ID: "u-b", Name: "Theo", Role: engine.RoleEmployee, IsActive: false}))
	got, err = mem.GetUser(ctx, "u-b")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestMemory_Locations_SaveAndLookup(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveLocation(ctx, engine.Location{ID: "loc-hq", Name: "Headquarters"}))

	got, err := mem.GetLocation(ctx, "loc-hq")
	require.NoError(t, err)
	assert.Equal(t, "Headquarters", got.Name)

	_, err = mem.GetLocation(ctx, "loc-404")
	assert.True(t, engine.IsNotFound(err))
}
