/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model
  from the wire contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Handlers validate; DTOs are pure data carriers. Domain-rule
  validation lives in the engine, not here.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/fleetline/asset-engine/engine"
)

// =============================================================================
// ASSET TYPES
// =============================================================================

type AssetDTO struct {
	ID                     int64   `json:"id"`
	AssetTag               string  `json:"asset_tag"`
	Type                   string  `json:"asset_type"`
	Category               string  `json:"category,omitempty"`
	Manufacturer           string  `json:"manufacturer,omitempty"`
	Model                  string  `json:"model,omitempty"`
	SerialNumber           string  `json:"serial_number,omitempty"`
	Condition              string  `json:"condition,omitempty"`
	WarrantyStart          *string `json:"warranty_start,omitempty"`
	WarrantyEnd            *string `json:"warranty_end,omitempty"`
	WarrantyExtendedMonths int     `json:"warranty_extended_months,omitempty"`
	AvailableExtensions    []int   `json:"available_extensions,omitempty"`
	LocationID             *string `json:"location_id,omitempty"`
	AssignedTo             *string `json:"assigned_to,omitempty"`
	Subscription           string  `json:"subscription,omitempty"`
	PurchaseDate           *string `json:"purchase_date,omitempty"`
	RenewalDate            *string `json:"renewal_date,omitempty"`
	SeatsTotal             *int    `json:"seats_total,omitempty"`
	SeatsUsed              int     `json:"seats_used"`
	Status                 string  `json:"status"`
	Notes                  string  `json:"notes,omitempty"`
	PurchaseCost           *string `json:"purchase_cost,omitempty"`
	CreatedAt              string  `json:"created_at"`
}

func toAssetDTO(a *engine.Asset) AssetDTO {
	dto := AssetDTO{
		ID:                     int64(a.ID),
		AssetTag:               a.AssetTag,
		Type:                   string(a.Type),
		Category:               string(a.Category),
		Manufacturer:           a.Manufacturer,
		Model:                  a.Model,
		SerialNumber:           a.SerialNumber,
		Condition:              string(a.Condition),
		WarrantyStart:          fmtDatePtr(a.WarrantyStart),
		WarrantyEnd:            fmtDatePtr(a.WarrantyEnd),
		WarrantyExtendedMonths: a.WarrantyExtendedMonths,
		Subscription:           a.Subscription,
		PurchaseDate:           fmtDatePtr(a.PurchaseDate),
		RenewalDate:            fmtDatePtr(a.RenewalDate),
		SeatsTotal:             a.SeatsTotal,
		SeatsUsed:              a.SeatsUsed,
		Status:                 string(a.Status),
		Notes:                  a.Notes,
		CreatedAt:              a.CreatedAt.Format(time.RFC3339),
	}
	if a.LocationID != nil {
		s := string(*a.LocationID)
		dto.LocationID = &s
	}
	if a.AssignedTo != nil {
		s := string(*a.AssignedTo)
		dto.AssignedTo = &s
	}
	if a.PurchaseCost != nil {
		s := a.PurchaseCost.String()
		dto.PurchaseCost = &s
	}
	if a.IsHardware() && !a.IsRetired() {
		dto.AvailableExtensions = engine.AvailableExtensions(a.Category, a.WarrantyExtendedMonths)
	}
	return dto
}

type CreateAssetRequest struct {
	AssetTag            string  `json:"asset_tag"`
	Type                string  `json:"asset_type"`
	Category            string  `json:"category,omitempty"`
	Manufacturer        string  `json:"manufacturer,omitempty"`
	Model               string  `json:"model,omitempty"`
	SerialNumber        string  `json:"serial_number,omitempty"`
	Condition           string  `json:"condition,omitempty"`
	WarrantyStart       *string `json:"warranty_start,omitempty"`
	WarrantyEnd         *string `json:"warranty_end,omitempty"`
	LocationID          *string `json:"location_id,omitempty"`
	Subscription        string  `json:"subscription,omitempty"`
	PurchaseDate        *string `json:"purchase_date,omitempty"`
	RenewalPeriodMonths *int    `json:"renewal_period_months,omitempty"`
	SeatsTotal          *int    `json:"seats_total,omitempty"`
	Notes               string  `json:"notes,omitempty"`
	PurchaseCost        *string `json:"purchase_cost,omitempty"`
}

type EditAssetRequest struct {
	Manufacturer         *string `json:"manufacturer,omitempty"`
	Model                *string `json:"model,omitempty"`
	Status               *string `json:"status,omitempty"`
	Condition            *string `json:"condition,omitempty"`
	Notes                *string `json:"notes,omitempty"`
	LocationID           *string `json:"location_id,omitempty"`
	SeatsTotal           *int    `json:"seats_total,omitempty"`
	RenewalPeriodMonths  *int    `json:"renewal_period_months,omitempty"`
	ExtendWarrantyMonths *int    `json:"extend_warranty_months,omitempty"`
	PurchaseCost         *string `json:"purchase_cost,omitempty"`
}

// =============================================================================
// ENTITLEMENT OPERATIONS
// =============================================================================

type AssignRequest struct {
	UserID string `json:"user_id"`
	Notes  string `json:"notes,omitempty"`
}

type ReturnRequest struct {
	UserID *string `json:"user_id,omitempty"`
	Notes  string  `json:"notes,omitempty"`
}

type RetireRequest struct {
	Notes string `json:"notes,omitempty"`
}

type MoveRequest struct {
	LocationID string `json:"location_id"`
	Notes      string `json:"notes,omitempty"`
}

type ExtendWarrantyRequest struct {
	Months int `json:"months"`
}

// =============================================================================
// EVENTS
// =============================================================================

type EventDTO struct {
	ID             string  `json:"id"`
	AssetID        int64   `json:"asset_id"`
	Type           string  `json:"event_type"`
	Timestamp      string  `json:"timestamp"`
	FromUserID     *string `json:"from_user_id,omitempty"`
	ToUserID       *string `json:"to_user_id,omitempty"`
	FromLocationID *string `json:"from_location_id,omitempty"`
	ToLocationID   *string `json:"to_location_id,omitempty"`
	ActorID        string  `json:"actor_id"`
	Notes          string  `json:"notes,omitempty"`
}

func toEventDTO(e engine.Event) EventDTO {
	dto := EventDTO{
		ID:        e.ID,
		AssetID:   int64(e.AssetID),
		Type:      string(e.Type),
		Timestamp: e.Timestamp.Format(time.RFC3339),
		ActorID:   string(e.ActorID),
		Notes:     e.Notes,
	}
	if e.FromUserID != nil {
		s := string(*e.FromUserID)
		dto.FromUserID = &s
	}
	if e.ToUserID != nil {
		s := string(*e.ToUserID)
		dto.ToUserID = &s
	}
	if e.FromLocationID != nil {
		s := string(*e.FromLocationID)
		dto.FromLocationID = &s
	}
	if e.ToLocationID != nil {
		s := string(*e.ToLocationID)
		dto.ToLocationID = &s
	}
	return dto
}

// =============================================================================
// REQUEST WORKFLOW
// =============================================================================

type SubmitRequestRequest struct {
	RequesterID        string `json:"requester_id"`
	AssetTypeRequested string `json:"asset_type_requested"`
	Description        string `json:"description"`
}

type ResolveRequestRequest struct {
	ResolverID    string `json:"resolver_id"`
	AssignAssetID *int64 `json:"assign_asset_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type RequestDTO struct {
	ID                 int64   `json:"id"`
	RequestType        string  `json:"request_type"`
	AssetTypeRequested string  `json:"asset_type_requested"`
	Description        string  `json:"description"`
	RequesterID        string  `json:"requester_id"`
	Status             string  `json:"status"`
	ResolvedByID       *string `json:"resolved_by_id,omitempty"`
	ResolutionNotes    string  `json:"resolution_notes,omitempty"`
	AssetID            *int64  `json:"asset_id,omitempty"`
	CreatedAt          string  `json:"created_at"`
	ResolvedAt         *string `json:"resolved_at,omitempty"`
}

func toRequestDTO(r *engine.AssetRequest) RequestDTO {
	dto := RequestDTO{
		ID:                 int64(r.ID),
		RequestType:        r.RequestType,
		AssetTypeRequested: string(r.AssetTypeRequested),
		Description:        r.Description,
		RequesterID:        string(r.RequesterID),
		Status:             string(r.Status),
		ResolutionNotes:    r.ResolutionNotes,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
	}
	if r.ResolvedByID != nil {
		s := string(*r.ResolvedByID)
		dto.ResolvedByID = &s
	}
	if r.AssetID != nil {
		id := int64(*r.AssetID)
		dto.AssetID = &id
	}
	if r.ResolvedAt != nil {
		s := r.ResolvedAt.Format(time.RFC3339)
		dto.ResolvedAt = &s
	}
	return dto
}

// =============================================================================
// REMINDERS
// =============================================================================

type ReminderDTO struct {
	AssetID    int64  `json:"asset_id"`
	AssetTag   string `json:"asset_tag"`
	AssetType  string `json:"asset_type"`
	Kind       string `json:"kind"`
	TargetDate string `json:"target_date"`
	DaysLeft   int    `json:"days_left"`
	Urgency    string `json:"urgency"`
}

func toReminderDTO(r engine.Reminder) ReminderDTO {
	return ReminderDTO{
		AssetID:    int64(r.AssetID),
		AssetTag:   r.AssetTag,
		AssetType:  string(r.AssetType),
		Kind:       string(r.Kind),
		TargetDate: r.TargetDate.Format("2006-01-02"),
		DaysLeft:   r.DaysLeft,
		Urgency:    string(r.Urgency),
	}
}

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type CreateUserRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

type DeactivateResponse struct {
	ReturnedAssets []string `json:"returned_assets"`
}

// =============================================================================
// HELPERS
// =============================================================================

func fmtDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
