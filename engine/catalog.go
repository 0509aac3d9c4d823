/*
catalog.go - Asset creation, edit, and read operations

PURPOSE:
  The record-store operations around the entitlement core: creating
  hardware and software assets, applying partial edits, and reading
  assets with their derived fields (seat occupancy, effective status)
  materialized.

CREATE:
  Hardware requires a category; software requires a subscription name.
  Tags are organization-unique; a duplicate tag is a ValidationError.
  Every creation appends a CREATE event.

EDIT:
  Partial patch semantics: only non-nil fields apply. A renewal
  recalculation happens only when a period is explicitly supplied.
  Warranty extension goes through the capped calculator. A location
  change records a MOVE event; everything else records UPDATE.
*/
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATALOG SERVICE
// =============================================================================

type Catalog struct {
	Assets    AssetStore
	Ledger    *Ledger
	Locations LocationDirectory
	Locks     *AssetLocker

	Now func() time.Time
}

func NewCatalog(assets AssetStore, ledger *Ledger, locations LocationDirectory, locks *AssetLocker) *Catalog {
	return &Catalog{Assets: assets, Ledger: ledger, Locations: locations, Locks: locks, Now: time.Now}
}

// =============================================================================
// CREATE
// =============================================================================

// CreateAssetInput carries type-specific creation fields. Which fields
// are meaningful depends on Type; the rest are ignored.
type CreateAssetInput struct {
	AssetTag string
	Type     AssetType

	// Hardware
	Category      Category
	Manufacturer  string
	Model         string
	SerialNumber  string
	Condition     Condition
	WarrantyStart *time.Time
	WarrantyEnd   *time.Time
	LocationID    *LocationID

	// Software
	Subscription        string
	PurchaseDate        *time.Time
	RenewalPeriodMonths *int
	SeatsTotal          *int

	// Shared
	Notes        string
	PurchaseCost *decimal.Decimal
	ActorID      UserID
}

// CreateAsset validates, persists, and records the CREATE event.
func (c *Catalog) CreateAsset(ctx context.Context, in CreateAssetInput) (*Asset, error) {
	tag := strings.TrimSpace(in.AssetTag)
	if tag == "" {
		return nil, Validationf("asset_tag", "required")
	}
	if in.Type != TypeHardware && in.Type != TypeSoftware {
		return nil, Validationf("asset_type", "must be HARDWARE or SOFTWARE")
	}
	if existing, err := c.Assets.GetAssetByTag(ctx, tag); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, Validationf("asset_tag", "tag %q already exists", tag)
	}
	if in.PurchaseCost != nil && in.PurchaseCost.IsNegative() {
		return nil, Validationf("purchase_cost", "must not be negative")
	}

	now := c.Now().UTC()
	asset := &Asset{
		AssetTag:     tag,
		Type:         in.Type,
		Notes:        in.Notes,
		Status:       StatusInStock,
		PurchaseCost: in.PurchaseCost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch in.Type {
	case TypeHardware:
		if in.Category == "" {
			return nil, Validationf("category", "required for hardware")
		}
		if in.LocationID != nil {
			if _, err := c.Locations.GetLocation(ctx, *in.LocationID); err != nil {
				return nil, err
			}
		}
		asset.Category = in.Category
		asset.Manufacturer = in.Manufacturer
		asset.Model = in.Model
		asset.SerialNumber = in.SerialNumber
		asset.Condition = in.Condition
		if asset.Condition == "" {
			asset.Condition = ConditionNew
		}
		asset.WarrantyStart = in.WarrantyStart
		asset.WarrantyEnd = in.WarrantyEnd
		asset.LocationID = in.LocationID

	case TypeSoftware:
		if strings.TrimSpace(in.Subscription) == "" {
			return nil, Validationf("subscription", "required for software")
		}
		if in.SeatsTotal != nil && *in.SeatsTotal <= 0 {
			return nil, Validationf("seats_total", "must be a positive integer")
		}
		asset.Subscription = strings.TrimSpace(in.Subscription)
		asset.Model = in.Model
		asset.PurchaseDate = in.PurchaseDate
		asset.SeatsTotal = in.SeatsTotal
		if in.PurchaseDate != nil {
			asset.RenewalDate = RecalculateRenewal(*in.PurchaseDate, in.RenewalPeriodMonths, nil)
		}
	}

	if err := c.Assets.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}
	if err := c.Ledger.Append(ctx, Event{
		AssetID: asset.ID,
		Type:    EventCreate,
		ActorID: in.ActorID,
		Notes:   "asset created",
	}); err != nil {
		return nil, err
	}
	return asset, nil
}

// =============================================================================
// EDIT
// =============================================================================

// EditAssetInput is a partial patch; nil fields are left untouched.
type EditAssetInput struct {
	Manufacturer *string
	Model        *string
	Status       *Status
	Condition    *Condition
	Notes        *string
	LocationID   *LocationID

	SeatsTotal           *int
	RenewalPeriodMonths  *int // explicit supply triggers renewal recalculation
	ExtendWarrantyMonths *int

	PurchaseCost *decimal.Decimal
	ActorID      UserID
}

// EditAsset applies the patch and records the matching events. The
// per-asset lock is held for the whole read-modify-write so concurrent
// warranty extensions or seat edits cannot lose each other's update.
func (c *Catalog) EditAsset(ctx context.Context, id AssetID, in EditAssetInput) (*Asset, error) {
	lock := c.Locks.ForAsset(id)
	lock.Lock()
	defer lock.Unlock()

	asset, err := c.Assets.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Manufacturer != nil {
		asset.Manufacturer = *in.Manufacturer
	}
	if in.Model != nil {
		asset.Model = *in.Model
	}
	if in.Status != nil {
		asset.Status = *in.Status
	}
	if in.Condition != nil {
		if !asset.IsHardware() {
			return nil, Validationf("condition", "applies to hardware only")
		}
		asset.Condition = *in.Condition
	}
	if in.Notes != nil {
		asset.Notes = *in.Notes
	}
	if in.PurchaseCost != nil {
		if in.PurchaseCost.IsNegative() {
			return nil, Validationf("purchase_cost", "must not be negative")
		}
		asset.PurchaseCost = in.PurchaseCost
	}
	if in.SeatsTotal != nil {
		if !asset.IsSoftware() {
			return nil, Validationf("seats_total", "applies to software only")
		}
		if *in.SeatsTotal <= 0 {
			return nil, Validationf("seats_total", "must be a positive integer")
		}
		used, err := c.Ledger.SeatsUsed(ctx, id)
		if err != nil {
			return nil, err
		}
		if *in.SeatsTotal < used {
			return nil, &CapacityError{
				Message:   "seats_total below current occupancy on " + asset.AssetTag,
				Limit:     *in.SeatsTotal,
				Requested: used,
			}
		}
		asset.SeatsTotal = in.SeatsTotal
	}
	if in.RenewalPeriodMonths != nil {
		if !asset.IsSoftware() {
			return nil, Validationf("renewal_period_months", "applies to software only")
		}
		if asset.PurchaseDate == nil {
			return nil, Validationf("renewal_period_months", "asset has no subscription start date")
		}
		asset.RenewalDate = RecalculateRenewal(*asset.PurchaseDate, in.RenewalPeriodMonths, asset.RenewalDate)
	}
	if in.ExtendWarrantyMonths != nil {
		if err := ExtendWarranty(asset, *in.ExtendWarrantyMonths); err != nil {
			return nil, err
		}
	}

	var moved *Event
	if in.LocationID != nil {
		if !asset.IsHardware() {
			return nil, Validationf("location_id", "applies to hardware only")
		}
		if _, err := c.Locations.GetLocation(ctx, *in.LocationID); err != nil {
			return nil, err
		}
		moved = &Event{
			AssetID:        asset.ID,
			Type:           EventMove,
			FromLocationID: asset.LocationID,
			ToLocationID:   in.LocationID,
			ActorID:        in.ActorID,
			Notes:          "location changed",
		}
		asset.LocationID = in.LocationID
	}

	asset.UpdatedAt = c.Now().UTC()
	if err := c.Assets.UpdateAsset(ctx, asset); err != nil {
		return nil, err
	}

	if moved != nil {
		if err := c.Ledger.Append(ctx, *moved); err != nil {
			return nil, err
		}
	} else {
		if err := c.Ledger.Append(ctx, Event{
			AssetID: asset.ID,
			Type:    EventUpdate,
			ActorID: in.ActorID,
			Notes:   "asset updated",
		}); err != nil {
			return nil, err
		}
	}
	return c.Materialize(ctx, asset)
}

// =============================================================================
// READS
// =============================================================================

// GetAsset returns the asset with SeatsUsed and effective status
// materialized.
func (c *Catalog) GetAsset(ctx context.Context, id AssetID) (*Asset, error) {
	asset, err := c.Assets.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.Materialize(ctx, asset)
}

// ListAssets returns filtered assets with derived fields materialized.
func (c *Catalog) ListAssets(ctx context.Context, f AssetFilter) ([]*Asset, error) {
	assets, err := c.Assets.ListAssets(ctx, f)
	if err != nil {
		return nil, err
	}
	for _, a := range assets {
		if _, err := c.Materialize(ctx, a); err != nil {
			return nil, err
		}
	}
	return assets, nil
}

// Materialize fills the derived seat count and overwrites Status with
// the effective status for software assets.
func (c *Catalog) Materialize(ctx context.Context, asset *Asset) (*Asset, error) {
	if asset.IsSoftware() {
		used, err := c.Ledger.SeatsUsed(ctx, asset.ID)
		if err != nil {
			return nil, err
		}
		asset.SeatsUsed = used
		asset.Status = EffectiveStatus(asset, used)
	}
	return asset, nil
}
