/*
importer.go - Bulk import validation with partial-failure reporting

PURPOSE:
  Row-by-row validation and construction of asset records. Rows are
  processed independently: one bad row never aborts the rest, and the
  report counts successes and failures side by side. Partial success is
  the normal, expected outcome of a batch, not a failure mode.

ROW RULES:
  - asset_tag and asset_type are always required
  - HARDWARE rows require category; SOFTWARE rows require subscription
  - seats_total, when present, must parse as a positive integer
  - purchase_cost, when present, must parse as a non-negative decimal
*/
package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IMPORT ROW - Raw string fields as they arrive from CSV or JSON
// =============================================================================

type ImportRow struct {
	AssetTag     string
	AssetType    string
	Category     string
	Manufacturer string
	Model        string
	SerialNumber string
	Subscription string
	SeatsTotal   string
	PurchaseCost string
	Notes        string
}

// RowError ties a failure back to its source row.
type RowError struct {
	Row      int    `json:"row"`
	AssetTag string `json:"asset_tag"`
	Error    string `json:"error"`
}

// ImportResult reports a batch outcome. Errors holds one entry per
// failed row; successful rows are already persisted.
type ImportResult struct {
	SuccessCount int        `json:"success_count"`
	ErrorCount   int        `json:"error_count"`
	Errors       []RowError `json:"errors"`
}

// =============================================================================
// IMPORTER
// =============================================================================

type Importer struct {
	Catalog *Catalog
}

func NewImporter(catalog *Catalog) *Importer {
	return &Importer{Catalog: catalog}
}

// ValidateRow checks one row and builds the creation payload. It never
// touches storage.
func (im *Importer) ValidateRow(row ImportRow) (*CreateAssetInput, error) {
	tag := strings.TrimSpace(row.AssetTag)
	if tag == "" {
		return nil, Validationf("asset_tag", "required")
	}

	assetType := AssetType(strings.ToUpper(strings.TrimSpace(row.AssetType)))
	if assetType != TypeHardware && assetType != TypeSoftware {
		return nil, Validationf("asset_type", "must be HARDWARE or SOFTWARE")
	}

	in := &CreateAssetInput{
		AssetTag:     tag,
		Type:         assetType,
		Manufacturer: strings.TrimSpace(row.Manufacturer),
		Model:        strings.TrimSpace(row.Model),
		SerialNumber: strings.TrimSpace(row.SerialNumber),
		Notes:        strings.TrimSpace(row.Notes),
	}

	switch assetType {
	case TypeHardware:
		if strings.TrimSpace(row.Category) == "" {
			return nil, Validationf("category", "required for hardware rows")
		}
		in.Category = Category(strings.ToUpper(strings.TrimSpace(row.Category)))
	case TypeSoftware:
		if strings.TrimSpace(row.Subscription) == "" {
			return nil, Validationf("subscription", "required for software rows")
		}
		in.Subscription = strings.TrimSpace(row.Subscription)
	}

	if s := strings.TrimSpace(row.SeatsTotal); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, Validationf("seats_total", "%q is not a positive integer", s)
		}
		in.SeatsTotal = &n
	}

	if s := strings.TrimSpace(row.PurchaseCost); s != "" {
		cost, err := decimal.NewFromString(s)
		if err != nil || cost.IsNegative() {
			return nil, Validationf("purchase_cost", "%q is not a valid cost", s)
		}
		in.PurchaseCost = &cost
	}

	return in, nil
}

// ImportBatch validates and persists each row independently. Row
// numbering in the report is 1-based.
func (im *Importer) ImportBatch(ctx context.Context, rows []ImportRow, actorID UserID) *ImportResult {
	result := &ImportResult{Errors: []RowError{}}

	for i, row := range rows {
		in, err := im.ValidateRow(row)
		if err == nil {
			in.ActorID = actorID
			_, err = im.Catalog.CreateAsset(ctx, *in)
		}
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, RowError{
				Row:      i + 1,
				AssetTag: strings.TrimSpace(row.AssetTag),
				Error:    err.Error(),
			})
			continue
		}
		result.SuccessCount++
	}
	return result
}

// ParseCSV maps CSV records to import rows. The first record is treated
// as a header; columns are matched by name, unknown columns ignored.
func ParseCSV(records [][]string) []ImportRow {
	if len(records) == 0 {
		return nil
	}

	idx := make(map[string]int)
	for i, name := range records[0] {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	rows := make([]ImportRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, ImportRow{
			AssetTag:     field(rec, "asset_tag"),
			AssetType:    field(rec, "asset_type"),
			Category:     field(rec, "category"),
			Manufacturer: field(rec, "manufacturer"),
			Model:        field(rec, "model"),
			SerialNumber: field(rec, "serial_number"),
			Subscription: field(rec, "subscription"),
			SeatsTotal:   field(rec, "seats_total"),
			PurchaseCost: field(rec, "purchase_cost"),
			Notes:        field(rec, "notes"),
		})
	}
	return rows
}
