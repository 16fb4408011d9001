package services

import (
	"fmt"
	"log"

	pubnub "github.com/pubnub/go/v7"
)

// Notifier publishes realtime events to per-user channels. A nil PubNub
// client turns publishing into a no-op so tests and local runs work without
// credentials.
type Notifier struct {
	pubnub *pubnub.PubNub
}

func NewNotifier(pn *pubnub.PubNub) *Notifier {
	return &Notifier{pubnub: pn}
}

func (n *Notifier) NotifyUser(userID string, message map[string]any) {
	if n == nil || n.pubnub == nil {
		return
	}

	channel := fmt.Sprintf("user-%s", userID)
	_, st, err := n.pubnub.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		log.Printf("Error publishing to %s: %v (status %d)", channel, err, st.StatusCode)
	}
}

func (n *Notifier) DisputeOpened(userID, orderID, disputeID string) {
	n.NotifyUser(userID, map[string]any{
		"type":       "dispute_opened",
		"order_id":   orderID,
		"dispute_id": disputeID,
	})
}

func (n *Notifier) DisputeCancelled(userID, disputeID string) {
	n.NotifyUser(userID, map[string]any{
		"type":       "dispute_cancelled",
		"dispute_id": disputeID,
	})
}

func (n *Notifier) TransferMarked(userID, orderID string) {
	n.NotifyUser(userID, map[string]any{
		"type":     "transfer_marked",
		"order_id": orderID,
	})
}

func (n *Notifier) ReceiptConfirmed(userID, orderID string) {
	n.NotifyUser(userID, map[string]any{
		"type":     "receipt_confirmed",
		"order_id": orderID,
	})
}

func (n *Notifier) FundsReleased(userID, orderID string) {
	n.NotifyUser(userID, map[string]any{
		"type":     "funds_released",
		"order_id": orderID,
	})
}
