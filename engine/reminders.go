/*
reminders.go - Expiration scanning and urgency classification

PURPOSE:
  Batch scan over asset records producing urgency-classified reminders
  for upcoming warranty ends (hardware) and subscription renewals
  (software). The scanner is a read-only projection: dismissal state
  lives with the caller and is passed in as an explicit set, keeping the
  engine stateless between calls.

URGENCY TIERS:
  daysLeft <= 0   expired
  1..7            urgent
  8..14           warning
  otherwise       normal (within the horizon)

ORDERING:
  Ascending by urgency rank (expired < urgent < warning < normal),
  ties broken by ascending daysLeft.
*/
package engine

import (
	"math"
	"sort"
	"time"
)

// =============================================================================
// REMINDER TYPES
// =============================================================================

type ReminderKind string

const (
	ReminderWarranty ReminderKind = "warranty"
	ReminderRenewal  ReminderKind = "renewal"
)

type Urgency string

const (
	UrgencyExpired Urgency = "expired"
	UrgencyUrgent  Urgency = "urgent"
	UrgencyWarning Urgency = "warning"
	UrgencyNormal  Urgency = "normal"
)

var urgencyRank = map[Urgency]int{
	UrgencyExpired: 0,
	UrgencyUrgent:  1,
	UrgencyWarning: 2,
	UrgencyNormal:  3,
}

// DismissKey identifies one dismissed (asset, kind) pair. The engine
// only filters by the supplied set; persistence is caller-owned.
type DismissKey struct {
	AssetID AssetID
	Kind    ReminderKind
}

type Reminder struct {
	AssetID    AssetID
	AssetTag   string
	AssetType  AssetType
	Kind       ReminderKind
	TargetDate time.Time
	DaysLeft   int
	Urgency    Urgency
}

// DefaultHorizonDays is the lookahead window when the caller does not
// supply one.
const DefaultHorizonDays = 30

// =============================================================================
// SCANNER
// =============================================================================

// ScanReminders inspects every non-retired asset with a warranty end
// (hardware) or renewal date (software) and returns urgency-sorted
// reminders due within horizonDays, excluding dismissed pairs.
func ScanReminders(assets []*Asset, now time.Time, dismissed map[DismissKey]bool, horizonDays int) []Reminder {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	var out []Reminder
	for _, a := range assets {
		if a == nil || a.IsRetired() {
			continue
		}

		var kind ReminderKind
		var target *time.Time
		switch {
		case a.IsHardware() && a.WarrantyEnd != nil:
			kind, target = ReminderWarranty, a.WarrantyEnd
		case a.IsSoftware() && a.RenewalDate != nil:
			kind, target = ReminderRenewal, a.RenewalDate
		default:
			continue
		}

		days := DaysUntil(now, *target)
		if days > horizonDays {
			continue
		}
		if dismissed[DismissKey{AssetID: a.ID, Kind: kind}] {
			continue
		}

		out = append(out, Reminder{
			AssetID:    a.ID,
			AssetTag:   a.AssetTag,
			AssetType:  a.Type,
			Kind:       kind,
			TargetDate: *target,
			DaysLeft:   days,
			Urgency:    classify(days),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := urgencyRank[out[i].Urgency], urgencyRank[out[j].Urgency]
		if ri != rj {
			return ri < rj
		}
		return out[i].DaysLeft < out[j].DaysLeft
	})
	return out
}

// DaysUntil computes ceil((target - now) / 1 day).
func DaysUntil(now, target time.Time) int {
	return int(math.Ceil(target.Sub(now).Hours() / 24))
}

func classify(daysLeft int) Urgency {
	switch {
	case daysLeft <= 0:
		return UrgencyExpired
	case daysLeft <= 7:
		return UrgencyUrgent
	case daysLeft <= 14:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}
