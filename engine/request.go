/*
request.go - Asset request workflow

PURPOSE:
  Turns an employee need into an assignment:

    submit -> PENDING -> APPROVED | DENIED (terminal)

  Resolution happens exactly once. A second approve/deny attempt on a
  resolved request fails with ConflictError instead of double-applying.

BOUND ASSIGNMENT:
  Approval may bind a specific available asset. The assignment is
  performed first; if it fails (capacity, already assigned), the whole
  approval fails and the request stays PENDING. An approval is never
  recorded with a failed assignment behind it.

SEE ALSO:
  - entitlement.go: Assign invoked on bound approval
*/
package engine

import (
	"context"
	"strings"
	"time"
)

// =============================================================================
// WORKFLOW SERVICE
// =============================================================================

type Workflow struct {
	Requests     RequestStore
	Entitlements *Entitlements

	// Now stamps submissions and resolutions; overridable in tests.
	Now func() time.Time
}

func NewWorkflow(requests RequestStore, entitlements *Entitlements) *Workflow {
	return &Workflow{Requests: requests, Entitlements: entitlements, Now: time.Now}
}

// Submit creates a PENDING request. The description must be non-blank.
func (w *Workflow) Submit(ctx context.Context, requesterID UserID, assetType AssetType, description string) (*AssetRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, Validationf("description", "must not be empty")
	}
	if assetType != TypeHardware && assetType != TypeSoftware {
		return nil, Validationf("asset_type_requested", "unknown asset type %q", assetType)
	}

	req := &AssetRequest{
		RequestType:        "new_asset",
		AssetTypeRequested: assetType,
		Description:        strings.TrimSpace(description),
		RequesterID:        requesterID,
		Status:             RequestPending,
		CreatedAt:          w.Now().UTC(),
	}
	if err := w.Requests.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Approve resolves a pending request. When assignAssetID is non-nil the
// asset is assigned to the requester first; an assignment failure aborts
// the approval atomically.
func (w *Workflow) Approve(ctx context.Context, requestID RequestID, resolverID UserID, assignAssetID *AssetID, notes string) (*AssetRequest, error) {
	req, err := w.Requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Resolved() {
		return nil, Conflictf("request %d is already %s", req.ID, req.Status)
	}

	if assignAssetID != nil {
		if _, err := w.Entitlements.Assign(ctx, *assignAssetID, req.RequesterID, resolverID, "assigned via request approval"); err != nil {
			return nil, err
		}
		req.AssetID = assignAssetID
	}

	now := w.Now().UTC()
	req.Status = RequestApproved
	req.ResolvedByID = &resolverID
	req.ResolvedAt = &now
	req.ResolutionNotes = notes

	if err := w.Requests.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Deny resolves a pending request without any assignment.
func (w *Workflow) Deny(ctx context.Context, requestID RequestID, resolverID UserID, notes string) (*AssetRequest, error) {
	req, err := w.Requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Resolved() {
		return nil, Conflictf("request %d is already %s", req.ID, req.Status)
	}

	now := w.Now().UTC()
	req.Status = RequestDenied
	req.ResolvedByID = &resolverID
	req.ResolvedAt = &now
	req.ResolutionNotes = notes

	if err := w.Requests.UpdateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Pending lists unresolved requests for approver views.
func (w *Workflow) Pending(ctx context.Context) ([]*AssetRequest, error) {
	return w.Requests.ListRequests(ctx, RequestPending)
}
