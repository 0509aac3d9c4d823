package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetline/asset-engine/engine"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var scanNow = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func hwExpiring(id engine.AssetID, tag string, daysFromNow int) *engine.Asset {
	end := scanNow.AddDate(0, 0, daysFromNow)
	return &engine.Asset{
		ID: id, AssetTag: tag, Type: engine.TypeHardware,
		Category: engine.CategoryLaptop, Status: engine.StatusInStock,
		WarrantyEnd: &end,
	}
}

func swRenewing(id engine.AssetID, tag string, daysFromNow int) *engine.Asset {
	renewal := scanNow.AddDate(0, 0, daysFromNow)
	return &engine.Asset{
		ID: id, AssetTag: tag, Type: engine.TypeSoftware,
		Subscription: "Acme Suite", Status: engine.StatusInStock,
		RenewalDate: &renewal,
	}
}

// =============================================================================
// URGENCY CLASSIFICATION AND ORDERING
// =============================================================================

func TestScanReminders_SortedByUrgencyThenDays(t *testing.T) {
	// GIVEN: Targets at -2, 25, 5, 10 days out, presented unsorted
	// WHEN: Scanning with a 30-day horizon
	// THEN: expired(-2) < urgent(5) < warning(10) < normal(25)

	assets := []*engine.Asset{
		swRenewing(2, "SW-25", 25),
		hwExpiring(1, "HW-EXPIRED", -2),
		hwExpiring(3, "HW-10", 10),
		swRenewing(4, "SW-5", 5),
	}

	out := engine.ScanReminders(assets, scanNow, nil, 30)
	require.Len(t, out, 4)

	assert.Equal(t, "HW-EXPIRED", out[0].AssetTag)
	assert.Equal(t, engine.UrgencyExpired, out[0].Urgency)

	assert.Equal(t, "SW-5", out[1].AssetTag)
	assert.Equal(t, engine.UrgencyUrgent, out[1].Urgency)

	assert.Equal(t, "HW-10", out[2].AssetTag)
	assert.Equal(t, engine.UrgencyWarning, out[2].Urgency)

	assert.Equal(t, "SW-25", out[3].AssetTag)
	assert.Equal(t, engine.UrgencyNormal, out[3].Urgency)
}

func TestScanReminders_TierBoundaries(t *testing.T) {
	// Day 7 is still urgent; day 8 is warning. Day 14 warning; 15 normal.
	cases := []struct {
		days int
		want engine.Urgency
	}{
		{0, engine.UrgencyExpired},
		{1, engine.UrgencyUrgent},
		{7, engine.UrgencyUrgent},
		{8, engine.UrgencyWarning},
		{14, engine.UrgencyWarning},
		{15, engine.UrgencyNormal},
	}
	for _, tc := range cases {
		out := engine.ScanReminders([]*engine.Asset{hwExpiring(1, "HW-1", tc.days)}, scanNow, nil, 30)
		require.Len(t, out, 1, "days=%d", tc.days)
		assert.Equal(t, tc.want, out[0].Urgency, "days=%d", tc.days)
		assert.Equal(t, tc.days, out[0].DaysLeft, "days=%d", tc.days)
	}
}

// =============================================================================
// FILTERING
// =============================================================================

func TestScanReminders_HorizonExcludesFarDates(t *testing.T) {
	assets := []*engine.Asset{
		hwExpiring(1, "HW-NEAR", 20),
		hwExpiring(2, "HW-FAR", 45),
	}
	out := engine.ScanReminders(assets, scanNow, nil, 30)
	require.Len(t, out, 1)
	assert.Equal(t, "HW-NEAR", out[0].AssetTag)
}

func TestScanReminders_DismissedPairExcluded(t *testing.T) {
	// Dismissal is keyed by (asset, kind); the other kind still fires.
	assets := []*engine.Asset{
		hwExpiring(1, "HW-1", 5),
		swRenewing(2, "SW-2", 5),
	}
	dismissed := map[engine.DismissKey]bool{
		{AssetID: 1, Kind: engine.ReminderWarranty}: true,
	}
	out := engine.ScanReminders(assets, scanNow, dismissed, 30)
	require.Len(t, out, 1)
	assert.Equal(t, "SW-2", out[0].AssetTag)
	assert.Equal(t, engine.ReminderRenewal, out[0].Kind)
}

func TestScanReminders_SkipsRetiredAndDateless(t *testing.T) {
	retired := hwExpiring(1, "HW-RETIRED", 5)
	retired.Status = engine.StatusRetired

	noDates := &engine.Asset{ID: 2, AssetTag: "HW-BARE", Type: engine.TypeHardware, Status: engine.StatusInStock}

	out := engine.ScanReminders([]*engine.Asset{retired, noDates, nil}, scanNow, nil, 30)
	assert.Empty(t, out)
}

func TestScanReminders_NonPositiveHorizon_UsesDefault(t *testing.T) {
	assets := []*engine.Asset{hwExpiring(1, "HW-1", engine.DefaultHorizonDays)}
	out := engine.ScanReminders(assets, scanNow, nil, 0)
	assert.Len(t, out, 1)
}

// =============================================================================
// DAY MATH
// =============================================================================

func TestDaysUntil_CeilsPartialDays(t *testing.T) {
	target := scanNow.Add(36 * time.Hour)
	assert.Equal(t, 2, engine.DaysUntil(scanNow, target))

	past := scanNow.Add(-12 * time.Hour)
	assert.Equal(t, 0, engine.DaysUntil(scanNow, past))
}
