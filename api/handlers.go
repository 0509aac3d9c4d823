/*
handlers.go - HTTP handlers for the asset engine

PURPOSE:
  Exposes the engine via REST. Handlers parse HTTP, delegate to the
  domain services, and serialize responses. No business rule lives here.

ERROR HANDLING:
  Engine error kinds map onto HTTP status codes:
    ValidationError -> 400
    NotFoundError   -> 404
    ConflictError   -> 409
    CapacityError   -> 422
  Anything else is a 500.

ACTOR:
  Auth is out of scope; the acting user id arrives in the X-Actor
  header and defaults to "system" when absent.

SEE ALSO:
  - dto.go: Request/response structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fleetline/asset-engine/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// UserAdmin is the slice of user-directory maintenance the API needs on
// top of the engine's read-only UserDirectory.
type UserAdmin interface {
	engine.UserDirectory
	SaveUser(ctx context.Context, u engine.User) error
	ListUsers(ctx context.Context) ([]*engine.User, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Catalog      *engine.Catalog
	Entitlements *engine.Entitlements
	Workflow     *engine.Workflow
	Ledger       *engine.Ledger
	Importer     *engine.Importer
	Users        UserAdmin
	Log          *logrus.Logger

	// HorizonDays is the reminder horizon used when the request does not
	// supply one; zero falls back to engine.DefaultHorizonDays.
	HorizonDays int
}

// =============================================================================
// ASSET HANDLERS
// =============================================================================

func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	f := engine.AssetFilter{
		Type:   engine.AssetType(strings.ToUpper(r.URL.Query().Get("type"))),
		Status: engine.Status(strings.ToUpper(r.URL.Query().Get("status"))),
	}
	assets, err := h.Catalog.ListAssets(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]AssetDTO, len(assets))
	for i, a := range assets {
		dtos[i] = toAssetDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, engine.Validationf("body", "invalid JSON: %v", err))
		return
	}

	in := engine.CreateAssetInput{
		AssetTag:            req.AssetTag,
		Type:                engine.AssetType(strings.ToUpper(req.Type)),
		Category:            engine.Category(strings.ToUpper(req.Category)),
		Manufacturer:        req.Manufacturer,
		Model:               req.Model,
		SerialNumber:        req.SerialNumber,
		Condition:           engine.Condition(strings.ToUpper(req.Condition)),
		Subscription:        req.Subscription,
		RenewalPeriodMonths: req.RenewalPeriodMonths,
		SeatsTotal:          req.SeatsTotal,
		Notes:               req.Notes,
		ActorID:             actor(r),
	}

	var err error
	if in.WarrantyStart, err = parseDatePtr(req.WarrantyStart, "warranty_start"); err != nil {
		h.writeError(w, err)
		return
	}
	if in.WarrantyEnd, err = parseDatePtr(req.WarrantyEnd, "warranty_end"); err != nil {
		h.writeError(w, err)
		return
	}
	if in.PurchaseDate, err = parseDatePtr(req.PurchaseDate, "purchase_date"); err != nil {
		h.writeError(w, err)
		return
	}
	if req.LocationID != nil {
		id := engine.LocationID(*req.LocationID)
		in.LocationID = &id
	}
	if in.PurchaseCost, err = parseCostPtr(req.PurchaseCost); err != nil {
		h.writeError(w, err)
		return
	}

	asset, err := h.Catalog.CreateAsset(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssetDTO(asset))
}

func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	asset, err := h.Catalog.GetAsset(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(asset))
}

func (h *Handler) EditAsset(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req EditAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, engine.Validationf("body", "invalid JSON: %v", err))
		return
	}

	in := engine.EditAssetInput{
		Manufacturer:         req.Manufacturer,
		Model:                req.Model,
		Notes:                req.Notes,
		SeatsTotal:           req.SeatsTotal,
		RenewalPeriodMonths:  req.RenewalPeriodMonths,
		ExtendWarrantyMonths: req.ExtendWarrantyMonths,
		ActorID:              actor(r),
	}
	if req.Status != nil {
		s := engine.Status(strings.ToUpper(*req.Status))
		in.Status = &s
	}
	if req.Condition != nil {
		c := engine.Condition(strings.ToUpper(*req.Condition))
		in.Condition = &c
	}
	if req.LocationID != nil {
		l := engine.LocationID(*req.LocationID)
		in.LocationID = &l
	}
	if in.PurchaseCost, err = parseCostPtr(req.PurchaseCost); err != nil {
		h.writeError(w, err)
		return
	}

	asset, err := h.Catalog.EditAsset(r.Context(), id, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(asset))
}

func (h *Handler) AssetEvents(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	events, err := h.Ledger.History(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]EventDTO, len(events))
	for i, e := range events {
		dtos[i] = toEventDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ENTITLEMENT HANDLERS
// =============================================================================

func (h *Handler) AssignAsset(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, engine.Validationf("body", "invalid JSON: %v", err))
		return
	}
	asset, err := h.Entitlements.Assign(r.Context(), id, engine.UserID(req.UserID), actor(r), req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(asset))
}

func (h *Handler) ReturnAsset(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, engine.Validationf("body", "invalid JSON: %v", err))
		return
	}
	var userID *engine.UserID
	if req.UserID != nil {
		u := engine.UserID(*req.UserID)
		userID = &u
	}
	asset, err := h.Entitlements.Return(r.Context(), id, userID, actor(r), req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(asset))
}

func (h *Handler) RetireAsset(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req RetireRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, engine.Validationf("body", "invalid JSON: %v", err))
			return
		}
	}
	asset, err := h.Entitlements.Retire(r.Context(), id, actor(r), req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(asset))
}

func (h *Handler) MoveAsset(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, engine.Validationf("body", "invalid JSON: %v", err))
		return
	}
	if req.LocationID == "" {
		h.writeError(w, engine.Validationf("location_id", "required"))
		return
	}
	asset, err := h.Entitlements.Move(r.Context(), id, engine.LocationID(req.LocationID), actor(r), req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(asset))
}

func (h *Handler) ExtendWarranty(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req ExtendWarrantyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, engine.Validationf("body", "invalid JSON: %v", err))
		return
	}
	asset, err := h.Catalog.EditAsset(r.Context(), id, engine.EditAssetInput{
		ExtendWarrantyMonths: &req.Months,
		ActorID:              actor(r),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(asset))
}

// =============================================================================
// REQUEST WORKFLOW HANDLERS
// =============================================================================

func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, engine.Validationf("body", "invalid JSON: %v", err))
		return
	}
	created, err := h.Workflow.Submit(r.Context(),
		engine.UserID(req.RequesterID),
		engine.AssetType(strings.ToUpper(req.AssetTypeRequested)),
		req.Description)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(created))
}

func (h *Handler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Workflow.Pending(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]RequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req ResolveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, engine.Validationf("body", "invalid JSON: %v", err))
		return
	}
	var assignID *engine.AssetID
	if req.AssignAssetID != nil {
		a := engine.AssetID(*req.AssignAssetID)
		assignID = &a
	}
	resolved, err := h.Workflow.Approve(r.Context(), id, engine.UserID(req.ResolverID), assignID, req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(resolved))
}

func (h *Handler) DenyRequest(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req ResolveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, engine.Validationf("body", "invalid JSON: %v", err))
		return
	}
	resolved, err := h.Workflow.Deny(r.Context(), id, engine.UserID(req.ResolverID), req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(resolved))
}

// =============================================================================
// REMINDERS
// =============================================================================

// ListReminders scans all assets. Dismissed pairs arrive as a comma
// separated dismissed=<assetID>:<kind> query parameter; the caller owns
// their persistence.
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	horizon := h.HorizonDays
	if horizon <= 0 {
		horizon = engine.DefaultHorizonDays
	}
	if s := r.URL.Query().Get("horizon"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			h.writeError(w, engine.Validationf("horizon", "%q is not a positive integer", s))
			return
		}
		horizon = n
	}

	dismissed := make(map[engine.DismissKey]bool)
	if s := r.URL.Query().Get("dismissed"); s != "" {
		for _, pair := range strings.Split(s, ",") {
			parts := strings.SplitN(pair, ":", 2)
			if len(parts) != 2 {
				continue
			}
			id, err := strconv.ParseInt(parts[0], 10, 64)
			if err != nil {
				continue
			}
			dismissed[engine.DismissKey{
				AssetID: engine.AssetID(id),
				Kind:    engine.ReminderKind(parts[1]),
			}] = true
		}
	}

	assets, err := h.Catalog.ListAssets(r.Context(), engine.AssetFilter{})
	if err != nil {
		h.writeError(w, err)
		return
	}

	reminders := engine.ScanReminders(assets, time.Now().UTC(), dismissed, horizon)
	dtos := make([]ReminderDTO, len(reminders))
	for i, rem := range reminders {
		dtos[i] = toReminderDTO(rem)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// IMPORT
// =============================================================================

// ImportAssets accepts a CSV body with a header row; see
// engine.ParseCSV for the recognized columns.
func (h *Handler) ImportAssets(w http.ResponseWriter, r *http.Request) {
	reader := csv.NewReader(r.Body)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		h.writeError(w, engine.Validationf("body", "invalid CSV: %v", err))
		return
	}
	rows := engine.ParseCSV(records)
	result := h.Importer.ImportBatch(r.Context(), rows, actor(r))
	h.Log.WithFields(logrus.Fields{
		"success_count": result.SuccessCount,
		"error_count":   result.ErrorCount,
	}).Info("asset import finished")
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// USER HANDLERS
// =============================================================================

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = UserDTO{ID: string(u.ID), Name: u.Name, Email: u.Email, Role: string(u.Role), IsActive: u.IsActive}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, engine.Validationf("body", "invalid JSON: %v", err))
		return
	}
	if strings.TrimSpace(req.ID) == "" || strings.TrimSpace(req.Name) == "" {
		h.writeError(w, engine.Validationf("id", "id and name are required"))
		return
	}
	role := engine.Role(strings.ToUpper(req.Role))
	if role == "" {
		role = engine.RoleEmployee
	}
	u := engine.User{ID: engine.UserID(req.ID), Name: req.Name, Email: req.Email, Role: role, IsActive: true}
	if err := h.Users.SaveUser(r.Context(), u); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, UserDTO{ID: string(u.ID), Name: u.Name, Email: u.Email, Role: string(u.Role), IsActive: true})
}

// DeactivateUser flips the active flag and releases every custody the
// user still holds, reporting the affected asset tags.
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id := engine.UserID(chi.URLParam(r, "id"))
	user, err := h.Users.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	user.IsActive = false
	if err := h.Users.SaveUser(r.Context(), *user); err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.Entitlements.HandleUserDeactivated(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeactivateResponse{ReturnedAssets: result.ReturnedAssets})
}

// =============================================================================
// HELPERS
// =============================================================================

func actor(r *http.Request) engine.UserID {
	if a := r.Header.Get("X-Actor"); a != "" {
		return engine.UserID(a)
	}
	return engine.SystemActor
}

func assetID(r *http.Request) (engine.AssetID, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, engine.Validationf("id", "%q is not a valid asset id", raw)
	}
	return engine.AssetID(id), nil
}

func requestID(r *http.Request) (engine.RequestID, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, engine.Validationf("id", "%q is not a valid request id", raw)
	}
	return engine.RequestID(id), nil
}

func parseDatePtr(s *string, field string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, engine.Validationf(field, "%q is not a YYYY-MM-DD date", *s)
	}
	return &t, nil
}

func parseCostPtr(s *string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, engine.Validationf("purchase_cost", "%q is not a decimal amount", *s)
	}
	return &d, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case engine.IsValidation(err):
		status = http.StatusBadRequest
	case engine.IsNotFound(err):
		status = http.StatusNotFound
	case engine.IsConflict(err):
		status = http.StatusConflict
	case engine.IsCapacity(err):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError && h.Log != nil {
		h.Log.WithError(err).Error("internal error")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
