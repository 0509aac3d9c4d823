package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetline/asset-engine/engine"
	"github.com/fleetline/asset-engine/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestImporter(t *testing.T) (*engine.Importer, *engine.Catalog) {
	t.Helper()
	mem := store.NewMemory()
	ledger := engine.NewLedger(mem, mem)
	catalog := engine.NewCatalog(mem, ledger, mem, engine.NewAssetLocker())
	return engine.NewImporter(catalog), catalog
}

// =============================================================================
// ROW VALIDATION
// =============================================================================

func TestValidateRow_RequiredFields(t *testing.T) {
	importer, _ := newTestImporter(t)

	cases := []struct {
		name string
		row  engine.ImportRow
	}{
		{"missing tag", engine.ImportRow{AssetType: "HARDWARE", Category: "LAPTOP"}},
		{"missing type", engine.ImportRow{AssetTag: "HW-1"}},
		{"bad type", engine.ImportRow{AssetTag: "HW-1", AssetType: "FURNITURE"}},
		{"hardware without category", engine.ImportRow{AssetTag: "HW-1", AssetType: "HARDWARE"}},
		{"software without subscription", engine.ImportRow{AssetTag: "SW-1", AssetType: "SOFTWARE"}},
		{"seats not a number", engine.ImportRow{AssetTag: "SW-1", AssetType: "SOFTWARE", Subscription: "Acme", SeatsTotal: "many"}},
		{"seats zero", engine.ImportRow{AssetTag: "SW-1", AssetType: "SOFTWARE", Subscription: "Acme", SeatsTotal: "0"}},
		{"negative cost", engine.ImportRow{AssetTag: "HW-1", AssetType: "HARDWARE", Category: "LAPTOP", PurchaseCost: "-10"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := importer.ValidateRow(tc.row)
			assert.True(t, engine.IsValidation(err))
		})
	}
}

func TestValidateRow_NormalizesCase(t *testing.T) {
	importer, _ := newTestImporter(t)

	in, err := importer.ValidateRow(engine.ImportRow{
		AssetTag:  " hw-001 ",
		AssetType: "hardware",
		Category:  "laptop",
	})
	require.NoError(t, err)
	assert.Equal(t, "hw-001", in.AssetTag)
	assert.Equal(t, engine.TypeHardware, in.Type)
	assert.Equal(t, engine.CategoryLaptop, in.Category)
}

// =============================================================================
// BATCH SEMANTICS
// =============================================================================

func TestImportBatch_PartialFailure(t *testing.T) {
	// GIVEN: 3 valid rows and 2 invalid rows
	// WHEN: Importing the batch
	// THEN: 3 persisted, 2 reported with their 1-based row numbers

	importer, catalog := newTestImporter(t)
	ctx := context.Background()

	rows := []engine.ImportRow{
		{AssetTag: "HW-001", AssetType: "HARDWARE", Category: "LAPTOP", Manufacturer: "Lenovo"},
		{AssetTag: "", AssetType: "HARDWARE", Category: "LAPTOP"},
		{AssetTag: "SW-001", AssetType: "SOFTWARE", Subscription: "Acme Suite", SeatsTotal: "25"},
		{AssetTag: "SW-002", AssetType: "SOFTWARE", SeatsTotal: "10"},
		{AssetTag: "HW-002", AssetType: "HARDWARE", Category: "MONITOR", PurchaseCost: "349.00"},
	}

	result := importer.ImportBatch(ctx, rows, "admin")
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 2, result.ErrorCount)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Equal(t, "SW-002", result.Errors[1].AssetTag)

	persisted, err := catalog.ListAssets(ctx, engine.AssetFilter{})
	require.NoError(t, err)
	assert.Len(t, persisted, 3)
}

func TestImportBatch_DuplicateTagWithinBatch(t *testing.T) {
	// The second occurrence of a tag fails; the first stands.

	importer, catalog := newTestImporter(t)
	ctx := context.Background()

	rows := []engine.ImportRow{
		{AssetTag: "HW-001", AssetType: "HARDWARE", Category: "LAPTOP"},
		{AssetTag: "HW-001", AssetType: "HARDWARE", Category: "MONITOR"},
	}

	result := importer.ImportBatch(ctx, rows, "admin")
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)

	persisted, err := catalog.ListAssets(ctx, engine.AssetFilter{})
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, engine.CategoryLaptop, persisted[0].Category)
}

func TestImportBatch_EmptyBatch(t *testing.T) {
	importer, _ := newTestImporter(t)
	result := importer.ImportBatch(context.Background(), nil, "admin")
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Empty(t, result.Errors)
}

// =============================================================================
// CSV MAPPING
// =============================================================================

func TestParseCSV_HeaderNameMatching(t *testing.T) {
	// Columns are matched by header name, order-independent; unknown
	// columns are ignored and missing cells read as empty.

	records := [][]string{
		{"asset_type", "asset_tag", "color", "category", "seats_total"},
		{"HARDWARE", "HW-001", "red", "LAPTOP", ""},
		{"SOFTWARE", "SW-001", "", "", "15"},
		{"HARDWARE", "HW-002"},
	}

	rows := engine.ParseCSV(records)
	require.Len(t, rows, 3)

	assert.Equal(t, "HW-001", rows[0].AssetTag)
	assert.Equal(t, "LAPTOP", rows[0].Category)

	assert.Equal(t, "SW-001", rows[1].AssetTag)
	assert.Equal(t, "15", rows[1].SeatsTotal)

	assert.Equal(t, "HW-002", rows[2].AssetTag)
	assert.Equal(t, "", rows[2].Category, "short record reads as empty cells")
}

func TestParseCSV_EmptyInput(t *testing.T) {
	assert.Nil(t, engine.ParseCSV(nil))
	assert.Empty(t, engine.ParseCSV([][]string{{"asset_tag"}}))
}
