/*
warranty.go - Renewal and warranty extension arithmetic

PURPOSE:
  Date math for subscription renewals and hardware warranty extensions.
  All arithmetic is date-only (no time-of-day component) and
  deterministic.

EXTENSION CAPS:
  Each hardware category has a fixed lifetime cap on cumulative warranty
  extension. Accessory categories are capped lower than primary device
  categories. The table is a plain key->months lookup, not a hierarchy;
  unknown categories fall back to the OTHER policy.

EXPLICIT NO-OP:
  RecalculateRenewal only fires when the caller explicitly supplies a
  period. Omission leaves the renewal date untouched; it never silently
  recomputes.
*/
package engine

import "time"

// =============================================================================
// EXTENSION CAP TABLE - Cumulative months allowed per category
// =============================================================================

const defaultExtensionCap = 12

var extensionCaps = map[Category]int{
	CategoryLaptop:   36,
	CategoryDesktop:  36,
	CategoryMonitor:  24,
	CategoryPhone:    24,
	CategoryTablet:   24,
	CategoryKeyboard: 12,
	CategoryMouse:    12,
	CategoryHeadset:  12,
	CategoryDock:     12,
	CategoryOther:    defaultExtensionCap,
}

// extensionOptions are the increments offered to callers, smallest first.
var extensionOptions = []int{3, 6, 12, 24, 36}

// ExtensionCap returns the cumulative extension ceiling for a category.
// Unknown categories get the OTHER policy.
func ExtensionCap(c Category) int {
	if cap, ok := extensionCaps[c]; ok {
		return cap
	}
	return defaultExtensionCap
}

// AvailableExtensions returns the extension increments still permitted
// given months already granted. Empty once the cap is reached, which
// callers use to disable further extension.
func AvailableExtensions(c Category, alreadyExtended int) []int {
	cap := ExtensionCap(c)
	var out []int
	for _, opt := range extensionOptions {
		if alreadyExtended+opt <= cap {
			out = append(out, opt)
		}
	}
	return out
}

// =============================================================================
// DATE ARITHMETIC
// =============================================================================

// ComputeRenewalDate adds whole months to a start date, returning a
// calendar date at UTC midnight.
func ComputeRenewalDate(start time.Time, periodMonths int) time.Time {
	d := dateOnly(start).AddDate(0, periodMonths, 0)
	return d
}

// RecalculateRenewal recomputes a renewal date only when the caller
// explicitly supplied a period. A nil period is a first-class no-op and
// returns the current value unchanged.
func RecalculateRenewal(start time.Time, periodMonths *int, current *time.Time) *time.Time {
	if periodMonths == nil {
		return current
	}
	d := ComputeRenewalDate(start, *periodMonths)
	return &d
}

// ExtendWarranty grants extensionMonths on top of what the asset already
// has. Fails with a CapacityError once the cumulative total would exceed
// the category cap. Mutates the asset in place on success.
func ExtendWarranty(a *Asset, extensionMonths int) error {
	if !a.IsHardware() {
		return Validationf("asset_type", "warranty extension applies to hardware only")
	}
	if extensionMonths <= 0 {
		return Validationf("months", "extension must be a positive number of months")
	}
	if a.WarrantyEnd == nil {
		return Validationf("warranty_end", "asset has no warranty end date to extend")
	}

	already := a.WarrantyExtendedMonths
	cap := ExtensionCap(a.Category)
	if already+extensionMonths > cap {
		return &CapacityError{
			Message:   "warranty extension cap exceeded for category " + string(a.Category),
			Limit:     cap,
			Requested: already + extensionMonths,
		}
	}

	end := dateOnly(*a.WarrantyEnd).AddDate(0, extensionMonths, 0)
	a.WarrantyEnd = &end
	a.WarrantyExtendedMonths = already + extensionMonths
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
