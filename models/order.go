package models

import (
	"time"
)

type OrderStatus string

const (
	OrderPendingPayment          OrderStatus = "pending_payment"
	OrderPaid                    OrderStatus = "paid"
	OrderPendingTransfer         OrderStatus = "pending_transfer"
	OrderSellerMarkedTransferred OrderStatus = "seller_marked_transferred"
	OrderBuyerConfirmed          OrderStatus = "buyer_confirmed"
	OrderCompleted               OrderStatus = "completed"
	OrderCancelled               OrderStatus = "cancelled"
	OrderDisputeOpen             OrderStatus = "dispute_open"
	OrderRefunded                OrderStatus = "refunded"
)

func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderPendingPayment,
		OrderPaid,
		OrderPendingTransfer,
		OrderSellerMarkedTransferred,
		OrderBuyerConfirmed,
		OrderCompleted,
		OrderCancelled,
		OrderDisputeOpen,
		OrderRefunded,
	}
}

func (s OrderStatus) Label() string {
	switch s {
	case OrderPendingPayment:
		return "Awaiting Payment"
	case OrderPaid:
		return "Paid"
	case OrderPendingTransfer:
		return "Awaiting Transfer"
	case OrderSellerMarkedTransferred:
		return "Seller Marked Transferred"
	case OrderBuyerConfirmed:
		return "Receipt Confirmed"
	case OrderCompleted:
		return "Completed"
	case OrderCancelled:
		return "Cancelled"
	case OrderDisputeOpen:
		return "Dispute Open"
	case OrderRefunded:
		return "Refunded"
	}
	return ""
}

func (s OrderStatus) Color() string {
	switch s {
	case OrderPendingPayment, OrderPendingTransfer, OrderSellerMarkedTransferred:
		return "yellow"
	case OrderPaid, OrderBuyerConfirmed:
		return "blue"
	case OrderCompleted:
		return "green"
	case OrderCancelled, OrderRefunded:
		return "gray"
	case OrderDisputeOpen:
		return "red"
	}
	return ""
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPendingPayment:          {OrderPaid, OrderCancelled},
	OrderPaid:                    {OrderPendingTransfer, OrderCancelled, OrderRefunded},
	OrderPendingTransfer:         {OrderSellerMarkedTransferred, OrderDisputeOpen, OrderCancelled},
	OrderSellerMarkedTransferred: {OrderBuyerConfirmed, OrderDisputeOpen},
	OrderBuyerConfirmed:          {OrderCompleted},
	OrderDisputeOpen:             {OrderCompleted, OrderRefunded, OrderCancelled},
	OrderCompleted:               {},
	OrderCancelled:               {},
	OrderRefunded:                {},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID                  string      `json:"id"`
	BuyerID             string      `json:"buyer_id"`
	SellerID            string      `json:"seller_id"`
	TicketID            string      `json:"ticket_id"`
	Amount              float64     `json:"amount"`
	Status              OrderStatus `json:"status"`
	EscrowTransactionID string      `json:"escrow_transaction_id,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}
