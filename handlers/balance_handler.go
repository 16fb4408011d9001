package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-resale/models"
	"ticket-resale/services"
	"ticket-resale/utils"
)

type BalanceHandler struct {
	app            *pocketbase.PocketBase
	balanceService *services.BalanceService
	cache          utils.Cache
	cacheTTL       time.Duration
}

func NewBalanceHandler(app *pocketbase.PocketBase, balanceService *services.BalanceService, cache utils.Cache, cacheTTL time.Duration) *BalanceHandler {
	return &BalanceHandler{
		app:            app,
		balanceService: balanceService,
		cache:          cache,
		cacheTTL:       cacheTTL,
	}
}

// GetBalance - Derive the seller's pending/available balance from their tickets
func (h *BalanceHandler) GetBalance(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	userID := e.Auth.Id

	cacheKey := "balance:" + userID
	if raw, ok, err := h.cache.Get(e.Request.Context(), cacheKey); err == nil && ok {
		var cached models.Balance
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return e.JSON(http.StatusOK, cached)
		}
	}

	records, err := h.app.FindRecordsByFilter(
		"tickets",
		"user_id = {:userId}",
		"-created",
		-1,
		0,
		dbx.Params{"userId": userID},
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to load tickets", err)
	}

	tickets := make([]models.Ticket, 0, len(records))
	for _, record := range records {
		tickets = append(tickets, recordToTicket(record))
	}

	balance := h.balanceService.Derive(tickets)

	if raw, err := json.Marshal(balance); err == nil {
		if err := h.cache.Set(e.Request.Context(), cacheKey, string(raw), h.cacheTTL); err != nil {
			log.Printf("Error caching balance for user %s: %v", userID, err)
		}
	}

	return e.JSON(http.StatusOK, balance)
}

func recordToTicket(record *core.Record) models.Ticket {
	ticket := models.Ticket{
		ID:         record.Id,
		UserID:     record.GetString("user_id"),
		EventID:    record.GetString("event_id"),
		EventName:  record.GetString("event_name"),
		EventCity:  record.GetString("event_city"),
		EventState: record.GetString("event_state"),
		UnitPrice:  record.GetFloat("unit_price"),
		Quantity:   record.GetInt("quantity"),
		Status:     models.TicketStatus(record.GetString("status")),
		OrderID:    record.GetString("order_id"),
	}

	if start := record.GetDateTime("event_start_date"); !start.IsZero() {
		t := start.Time()
		ticket.EventStartDate = &t
	}

	return ticket
}
