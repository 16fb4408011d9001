package models

import (
	"time"
)

type EscrowStatus string

const (
	EscrowLocked   EscrowStatus = "locked"
	EscrowReleased EscrowStatus = "released"
	EscrowRefunded EscrowStatus = "refunded"
	EscrowDisputed EscrowStatus = "disputed"
)

func EscrowStatuses() []EscrowStatus {
	return []EscrowStatus{
		EscrowLocked,
		EscrowReleased,
		EscrowRefunded,
		EscrowDisputed,
	}
}

func (s EscrowStatus) Label() string {
	switch s {
	case EscrowLocked:
		return "Funds Held"
	case EscrowReleased:
		return "Released to Seller"
	case EscrowRefunded:
		return "Refunded to Buyer"
	case EscrowDisputed:
		return "Under Dispute"
	}
	return ""
}

func (s EscrowStatus) Color() string {
	switch s {
	case EscrowLocked:
		return "yellow"
	case EscrowReleased:
		return "green"
	case EscrowRefunded:
		return "gray"
	case EscrowDisputed:
		return "red"
	}
	return ""
}

var escrowTransitions = map[EscrowStatus][]EscrowStatus{
	EscrowLocked:   {EscrowReleased, EscrowRefunded, EscrowDisputed},
	EscrowDisputed: {EscrowReleased, EscrowRefunded},
	EscrowReleased: {},
	EscrowRefunded: {},
}

func (s EscrowStatus) CanTransitionTo(next EscrowStatus) bool {
	for _, allowed := range escrowTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Disputable reports whether a dispute may be opened against an escrow in
// this status. Only locked escrows accept new disputes.
func (s EscrowStatus) Disputable() bool {
	return s == EscrowLocked
}

type EscrowTransaction struct {
	ID           string       `json:"id"`
	OrderID      string       `json:"order_id"`
	LockedAmount float64      `json:"locked_amount"`
	Status       EscrowStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
}
