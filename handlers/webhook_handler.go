package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/crypto/bcrypt"

	"ticket-resale/services"
	"ticket-resale/utils"
)

// WebhookHandler receives escrow settlement callbacks from the backend:
// release and refund events that make cached escrow and balance state stale.
type WebhookHandler struct {
	app      *pocketbase.PocketBase
	cache    utils.Cache
	notifier *services.Notifier

	// secretHash is the bcrypt hash of the shared webhook secret.
	secretHash string
}

func NewWebhookHandler(app *pocketbase.PocketBase, cache utils.Cache, notifier *services.Notifier, secretHash string) *WebhookHandler {
	return &WebhookHandler{
		app:        app,
		cache:      cache,
		notifier:   notifier,
		secretHash: secretHash,
	}
}

// HandleEscrowEvent - Escrow release/refund callback from the backend
func (h *WebhookHandler) HandleEscrowEvent(e *core.RequestEvent) error {
	secret := e.Request.Header.Get("X-Webhook-Secret")
	if h.secretHash == "" || bcrypt.CompareHashAndPassword([]byte(h.secretHash), []byte(secret)) != nil {
		return apis.NewUnauthorizedError("Invalid webhook secret", nil)
	}

	var payload struct {
		Event    string `json:"event"`
		OrderID  string `json:"order_id"`
		SellerID string `json:"seller_id"`
		BuyerID  string `json:"buyer_id"`
	}
	if err := e.BindBody(&payload); err != nil {
		return apis.NewBadRequestError("Invalid payload", err)
	}

	keys := []string{
		"escrow:order:" + payload.OrderID,
		"balance:" + payload.SellerID,
	}
	if err := h.cache.Invalidate(e.Request.Context(), keys...); err != nil {
		log.Printf("Error invalidating caches for escrow event on order %s: %v", payload.OrderID, err)
	}

	switch payload.Event {
	case "released":
		h.notifier.FundsReleased(payload.SellerID, payload.OrderID)
	case "refunded":
		h.notifier.NotifyUser(payload.BuyerID, map[string]any{
			"type":     "escrow_refunded",
			"order_id": payload.OrderID,
		})
	default:
		log.Printf("Unknown escrow webhook event %q for order %s", payload.Event, payload.OrderID)
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
