package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetline/asset-engine/engine"
)

func intPtr(n int) *int { return &n }

func TestEffectiveStatus_Hardware_StoredStatusVerbatim(t *testing.T) {
	for _, s := range []engine.Status{engine.StatusInStock, engine.StatusAssigned, engine.StatusInRepair, engine.StatusRetired} {
		a := &engine.Asset{Type: engine.TypeHardware, Status: s}
		assert.Equal(t, s, engine.EffectiveStatus(a, 0))
	}
}

func TestEffectiveStatus_Software_DerivedFromOccupancy(t *testing.T) {
	cases := []struct {
		name      string
		status    engine.Status
		seats     *int
		used      int
		want      engine.Status
	}{
		{"retired wins over full pool", engine.StatusRetired, intPtr(1), 1, engine.StatusRetired},
		{"unlimited pool always in stock", engine.StatusInStock, nil, 500, engine.StatusInStock},
		{"seats available", engine.StatusInStock, intPtr(5), 4, engine.StatusInStock},
		{"pool exactly full", engine.StatusInStock, intPtr(5), 5, engine.StatusAssigned},
		{"pool over capacity", engine.StatusInStock, intPtr(5), 6, engine.StatusAssigned},
		{"stored assigned is advisory only", engine.StatusAssigned, intPtr(5), 0, engine.StatusInStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &engine.Asset{Type: engine.TypeSoftware, Status: tc.status, SeatsTotal: tc.seats}
			assert.Equal(t, tc.want, engine.EffectiveStatus(a, tc.used))
		})
	}
}

func TestEffectiveStatus_NilAsset_Total(t *testing.T) {
	assert.Equal(t, engine.StatusInStock, engine.EffectiveStatus(nil, 3))
}

func TestEffectiveStatus_Pure_DoesNotMutate(t *testing.T) {
	a := &engine.Asset{Type: engine.TypeSoftware, Status: engine.StatusInStock, SeatsTotal: intPtr(1)}
	_ = engine.EffectiveStatus(a, 1)
	assert.Equal(t, engine.StatusInStock, a.Status, "derivation must not write back")
}
