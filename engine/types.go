/*
Package engine implements the asset lifecycle and entitlement core.

PURPOSE:
  This package contains the domain types and rules for tracking
  organizational assets (hardware units and seat-licensed software
  subscriptions), their custody over time, and derived operational
  signals (effective status, expiration urgency).

KEY CONCEPTS IN THIS FILE (types.go):
  - Asset: One hardware unit or one software subscription line
  - Event: An immutable ledger entry recording a custody/state change
  - User: External directory identity (read, never owned)
  - AssetRequest: Employee ask that flows through the approval workflow

DESIGN PRINCIPLES:
  1. Immutability: Events are append-only and never edited
  2. Derivation: Software seat occupancy is replayed from events,
     never read from a cached counter
  3. Exclusivity: Hardware has a single assignee; software has a
     multiset of seat holders
  4. Auditability: Every state change produces exactly one event

SEE ALSO:
  - ledger.go: Event persistence and seat reconstruction
  - entitlement.go: Assignment/return/retire state machine
  - status.go: Effective status derivation
  - warranty.go: Renewal and warranty extension arithmetic
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AssetID int64
type RequestID int64
type UserID string
type LocationID string

// =============================================================================
// ASSET - One hardware unit or one software subscription line
// =============================================================================

type AssetType string

const (
	TypeHardware AssetType = "HARDWARE"
	TypeSoftware AssetType = "SOFTWARE"
)

// Category enumerates hardware kinds. Accessory categories carry lower
// warranty extension caps than primary device categories (see warranty.go).
type Category string

const (
	CategoryLaptop   Category = "LAPTOP"
	CategoryDesktop  Category = "DESKTOP"
	CategoryMonitor  Category = "MONITOR"
	CategoryPhone    Category = "PHONE"
	CategoryTablet   Category = "TABLET"
	CategoryKeyboard Category = "KEYBOARD"
	CategoryMouse    Category = "MOUSE"
	CategoryHeadset  Category = "HEADSET"
	CategoryDock     Category = "DOCK"
	CategoryOther    Category = "OTHER"
)

type Condition string

const (
	ConditionNew         Condition = "NEW"
	ConditionGood        Condition = "GOOD"
	ConditionFair        Condition = "FAIR"
	ConditionDamaged     Condition = "DAMAGED"
	ConditionUnderRepair Condition = "UNDER_REPAIR"
)

type Status string

const (
	StatusInStock  Status = "IN_STOCK"
	StatusAssigned Status = "ASSIGNED"
	StatusInRepair Status = "IN_REPAIR"
	StatusRetired  Status = "RETIRED"
)

// Asset is the mutable current-state projection of a tracked asset.
//
// INVARIANTS:
//   - Hardware: AssignedTo non-nil <=> Status is effectively ASSIGNED.
//   - Software: occupancy is reconstructed from events; the stored Status
//     is advisory except for RETIRED, which is authoritative for both
//     types (see status.go).
//   - Assets are never hard-deleted; retirement is a terminal status.
type Asset struct {
	ID       AssetID
	AssetTag string // organization-unique, human readable
	Type     AssetType

	// Hardware-only
	Category               Category
	Manufacturer           string
	Model                  string // doubles as "version" for software
	SerialNumber           string
	Condition              Condition
	WarrantyStart          *time.Time
	WarrantyEnd            *time.Time
	WarrantyExtendedMonths int
	LocationID             *LocationID
	AssignedTo             *UserID // exclusive custody

	// Software-only
	Subscription string
	PurchaseDate *time.Time // subscription start
	RenewalDate  *time.Time
	SeatsTotal   *int // nil = unlimited
	SeatsUsed    int  // derived, materialized on read only

	// Shared
	Status       Status
	Notes        string
	PurchaseCost *decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Asset) IsHardware() bool { return a.Type == TypeHardware }
func (a *Asset) IsSoftware() bool { return a.Type == TypeSoftware }
func (a *Asset) IsRetired() bool  { return a.Status == StatusRetired }

// Unlimited reports whether a software asset has no seat cap.
func (a *Asset) Unlimited() bool { return a.SeatsTotal == nil }

// =============================================================================
// EVENT - Immutable fact appended on every custody/state change
// =============================================================================

type EventType string

const (
	EventCreate EventType = "CREATE"
	EventAssign EventType = "ASSIGN"
	EventReturn EventType = "RETURN"
	EventMove   EventType = "MOVE"
	EventUpdate EventType = "UPDATE"
	EventRetire EventType = "RETIRE"
)

// Event documents one state-changing operation on an asset. Events are
// append-only: they are never edited or deleted, and they are the sole
// source for reconstructing software seat occupancy.
type Event struct {
	ID        string // UUID
	AssetID   AssetID
	Type      EventType
	Timestamp time.Time // server-assigned, non-decreasing per asset

	FromUserID     *UserID // RETURN
	ToUserID       *UserID // ASSIGN
	FromLocationID *LocationID
	ToLocationID   *LocationID // MOVE

	ActorID UserID // who performed the action
	Notes   string
}

// =============================================================================
// USER - External directory identity, read by id, never owned here
// =============================================================================

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
	RoleAuditor  Role = "AUDITOR"
)

type User struct {
	ID       UserID
	Name     string
	Email    string
	Role     Role
	IsActive bool
}

// SystemActor is the actor recorded on automatic operations such as
// return-on-deactivation.
const SystemActor UserID = "system"

// =============================================================================
// LOCATION - Weak reference target; lookup only, no ownership
// =============================================================================

type Location struct {
	ID   LocationID
	Name string
}

// =============================================================================
// ASSET REQUEST - Employee ask flowing through the approval workflow
// =============================================================================

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestDenied   RequestStatus = "DENIED"
)

// AssetRequest is created by request submission and mutated exactly once
// at resolution. Once APPROVED or DENIED it is terminal; a second
// resolution attempt fails rather than double-applying.
type AssetRequest struct {
	ID                 RequestID
	RequestType        string
	AssetTypeRequested AssetType
	Description        string
	RequesterID        UserID
	Status             RequestStatus
	ResolvedByID       *UserID
	ResolutionNotes    string
	AssetID            *AssetID // bound on approval, optional
	CreatedAt          time.Time
	ResolvedAt         *time.Time
}

func (r *AssetRequest) Resolved() bool { return r.Status != RequestPending }
