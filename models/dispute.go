package models

import (
	"time"
)

type DisputeStatus string

const (
	DisputeAwaitingSellerResponse DisputeStatus = "awaiting_seller_response"
	DisputeUnderReview            DisputeStatus = "under_review"
	DisputeEscalated              DisputeStatus = "escalated"
	DisputeResolved               DisputeStatus = "resolved"
	DisputeClosed                 DisputeStatus = "closed"
	DisputeCancelled              DisputeStatus = "cancelled"
)

func DisputeStatuses() []DisputeStatus {
	return []DisputeStatus{
		DisputeAwaitingSellerResponse,
		DisputeUnderReview,
		DisputeEscalated,
		DisputeResolved,
		DisputeClosed,
		DisputeCancelled,
	}
}

func (s DisputeStatus) Label() string {
	switch s {
	case DisputeAwaitingSellerResponse:
		return "Awaiting Seller Response"
	case DisputeUnderReview:
		return "Under Review"
	case DisputeEscalated:
		return "Escalated"
	case DisputeResolved:
		return "Resolved"
	case DisputeClosed:
		return "Closed"
	case DisputeCancelled:
		return "Cancelled"
	}
	return ""
}

func (s DisputeStatus) Color() string {
	switch s {
	case DisputeAwaitingSellerResponse:
		return "yellow"
	case DisputeUnderReview, DisputeEscalated:
		return "orange"
	case DisputeResolved:
		return "green"
	case DisputeClosed, DisputeCancelled:
		return "gray"
	}
	return ""
}

// Terminal reports whether the dispute has reached a final state.
func (s DisputeStatus) Terminal() bool {
	switch s {
	case DisputeResolved, DisputeClosed, DisputeCancelled:
		return true
	}
	return false
}

// Active means the dispute still counts against the one-active-dispute-per-order
// invariant. Cancelled disputes do not.
func (s DisputeStatus) Active() bool {
	return s != DisputeCancelled
}

type DisputeType string

const (
	DisputeNotReceived        DisputeType = "not_received"
	DisputeNotAsDescribed     DisputeType = "not_as_described"
	DisputeDefective          DisputeType = "defective"
	DisputeSellerUnresponsive DisputeType = "seller_unresponsive"
	DisputeUnauthorized       DisputeType = "unauthorized_transaction"
	DisputeDuplicatePayment   DisputeType = "duplicate_payment"
	DisputeOther              DisputeType = "other"
)

func DisputeTypes() []DisputeType {
	return []DisputeType{
		DisputeNotReceived,
		DisputeNotAsDescribed,
		DisputeDefective,
		DisputeSellerUnresponsive,
		DisputeUnauthorized,
		DisputeDuplicatePayment,
		DisputeOther,
	}
}

func (t DisputeType) Label() string {
	switch t {
	case DisputeNotReceived:
		return "Ticket Not Received"
	case DisputeNotAsDescribed:
		return "Not As Described"
	case DisputeDefective:
		return "Defective Ticket"
	case DisputeSellerUnresponsive:
		return "Seller Unresponsive"
	case DisputeUnauthorized:
		return "Unauthorized Transaction"
	case DisputeDuplicatePayment:
		return "Duplicate Payment"
	case DisputeOther:
		return "Other"
	}
	return ""
}

// Role identifies which side of the order the current user is on.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// DisputeAction is a user-facing action the UI may offer on a dispute.
type DisputeAction string

const (
	ActionCancel         DisputeAction = "cancel"
	ActionRespond        DisputeAction = "respond"
	ActionView           DisputeAction = "view"
	ActionViewResolution DisputeAction = "view_resolution"
)

// disputeActions maps status -> role -> allowed actions. This is the read-side
// lifecycle table; the write-side gating (cancel preconditions) lives in the
// dispute service and consults the same table.
var disputeActions = map[DisputeStatus]map[Role][]DisputeAction{
	DisputeAwaitingSellerResponse: {
		RoleBuyer:  {ActionCancel},
		RoleSeller: {ActionRespond},
	},
	DisputeUnderReview: {
		RoleBuyer:  {ActionView},
		RoleSeller: {ActionView},
	},
	DisputeEscalated: {
		RoleBuyer:  {ActionView},
		RoleSeller: {ActionView},
	},
	DisputeResolved: {
		RoleBuyer:  {ActionViewResolution},
		RoleSeller: {ActionViewResolution},
	},
	DisputeClosed: {
		RoleBuyer:  {},
		RoleSeller: {},
	},
	DisputeCancelled: {
		RoleBuyer:  {},
		RoleSeller: {},
	},
}

// AllowedActions returns the actions the given role may take on a dispute in
// this status. Unknown statuses yield no actions.
func (s DisputeStatus) AllowedActions(role Role) []DisputeAction {
	byRole, ok := disputeActions[s]
	if !ok {
		return nil
	}
	return byRole[role]
}

// Cancellable reports whether a buyer may still withdraw the dispute.
func (s DisputeStatus) Cancellable() bool {
	for _, a := range s.AllowedActions(RoleBuyer) {
		if a == ActionCancel {
			return true
		}
	}
	return false
}

type Dispute struct {
	ID                string        `json:"id"`
	OrderID           string        `json:"order_id"`
	EscrowTransaction string        `json:"escrow_transaction"`
	RaisedBy          string        `json:"raised_by"`
	Type              DisputeType   `json:"dispute_type"`
	Description       string        `json:"description"`
	DisputedAmount    float64       `json:"disputed_amount"`
	Evidence          []string      `json:"evidence,omitempty"`
	SellerResponse    string        `json:"seller_response,omitempty"`
	SellerEvidence    []string      `json:"seller_evidence,omitempty"`
	ResolutionNotes   string        `json:"resolution_notes,omitempty"`
	Status            DisputeStatus `json:"status"`
	ResponseDeadline  *time.Time    `json:"response_deadline,omitempty"`
	EscalatedAt       *time.Time    `json:"escalated_at,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}
