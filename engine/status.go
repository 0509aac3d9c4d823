/*
status.go - Effective status derivation

PURPOSE:
  The stored status field is authoritative for hardware but only
  advisory for software: a software record may say IN_STOCK while every
  seat is taken. EffectiveStatus is the single place that resolves the
  discrepancy.

RULES:
  Hardware: stored status, verbatim.
  Software: RETIRED short-circuits (terminal overrides everything);
            otherwise unlimited pools are IN_STOCK, full pools are
            ASSIGNED, and anything else is IN_STOCK.

GUARANTEES:
  Total (never panics), pure (depends only on its inputs, mutates
  nothing), idempotent (same inputs, same answer).
*/
package engine

// EffectiveStatus derives the status actually shown and acted upon.
// seatsUsed is the ledger-reconstructed occupancy and is only consulted
// for software assets.
func EffectiveStatus(a *Asset, seatsUsed int) Status {
	if a == nil {
		return StatusInStock
	}
	if a.IsHardware() {
		return a.Status
	}

	// Software: RETIRED is the only authoritative stored value.
	if a.Status == StatusRetired {
		return StatusRetired
	}
	if a.SeatsTotal == nil {
		return StatusInStock
	}
	if seatsUsed >= *a.SeatsTotal {
		return StatusAssigned
	}
	return StatusInStock
}
