package models

import (
	"time"
)

type TicketStatus string

const (
	TicketActive              TicketStatus = "active"
	TicketPendingVerification TicketStatus = "pending_verification"
	TicketVerified            TicketStatus = "verified"
	TicketUsed                TicketStatus = "used"
	TicketCancelled           TicketStatus = "cancelled"
	TicketExpired             TicketStatus = "expired"
	TicketPendingTransfer     TicketStatus = "pending_transfer"
	TicketTransferred         TicketStatus = "transferred"
	TicketSold                TicketStatus = "sold"
	TicketInvalid             TicketStatus = "invalid"
	TicketRevoked             TicketStatus = "revoked"
)

// TicketStatuses lists every ticket status. Tests iterate this to catch
// values missing from the label, color and transition tables.
func TicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketActive,
		TicketPendingVerification,
		TicketVerified,
		TicketUsed,
		TicketCancelled,
		TicketExpired,
		TicketPendingTransfer,
		TicketTransferred,
		TicketSold,
		TicketInvalid,
		TicketRevoked,
	}
}

func (s TicketStatus) Label() string {
	switch s {
	case TicketActive:
		return "Listed"
	case TicketPendingVerification:
		return "Pending Verification"
	case TicketVerified:
		return "Verified"
	case TicketUsed:
		return "Used"
	case TicketCancelled:
		return "Cancelled"
	case TicketExpired:
		return "Expired"
	case TicketPendingTransfer:
		return "Transfer In Progress"
	case TicketTransferred:
		return "Transferred"
	case TicketSold:
		return "Sold"
	case TicketInvalid:
		return "Invalid"
	case TicketRevoked:
		return "Revoked"
	}
	return ""
}

func (s TicketStatus) Color() string {
	switch s {
	case TicketActive, TicketVerified:
		return "green"
	case TicketPendingVerification, TicketPendingTransfer:
		return "yellow"
	case TicketTransferred, TicketSold:
		return "blue"
	case TicketUsed, TicketExpired, TicketCancelled:
		return "gray"
	case TicketInvalid, TicketRevoked:
		return "red"
	}
	return ""
}

// ticketTransitions holds the allowed next statuses per status. Terminal
// event-lifecycle moves (used, expired, cancelled) are driven by the backend;
// they appear here so the client can validate incoming state changes too.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketActive:              {TicketPendingTransfer, TicketCancelled, TicketExpired, TicketRevoked},
	TicketPendingVerification: {TicketVerified, TicketInvalid},
	TicketVerified:            {TicketActive, TicketUsed, TicketExpired, TicketRevoked},
	TicketPendingTransfer:     {TicketTransferred, TicketActive, TicketCancelled},
	TicketTransferred:         {TicketUsed, TicketExpired},
	TicketSold:                {},
	TicketUsed:                {},
	TicketCancelled:           {},
	TicketExpired:             {},
	TicketInvalid:             {},
	TicketRevoked:             {},
}

func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, allowed := range ticketTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Ticket struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	EventID        string       `json:"event_id"`
	EventName      string       `json:"event_name"`
	EventStartDate *time.Time   `json:"event_start_date"`
	EventCity      string       `json:"event_city"`
	EventState     string       `json:"event_state"`
	UnitPrice      float64      `json:"unit_price"`
	Quantity       int          `json:"quantity"`
	Status         TicketStatus `json:"status"`
	OrderID        string       `json:"order_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// HasPendingTransfer reports whether the ticket is mid-handshake. A ticket in
// this state must reference exactly one order.
func (t *Ticket) HasPendingTransfer() bool {
	return t.Status == TicketPendingTransfer && t.OrderID != ""
}
