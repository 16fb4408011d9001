package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-resale/internal/services/escrowapi"
	"ticket-resale/internal/status"
	"ticket-resale/models"
	"ticket-resale/services"
)

type DisputeHandler struct {
	app            *pocketbase.PocketBase
	disputeService *services.DisputeService
	escrowAPI      escrowapi.API
}

func NewDisputeHandler(app *pocketbase.PocketBase, disputeService *services.DisputeService, escrowAPI escrowapi.API) *DisputeHandler {
	return &DisputeHandler{
		app:            app,
		disputeService: disputeService,
		escrowAPI:      escrowAPI,
	}
}

// GetEligibility - Check whether a dispute may be opened for an order
func (h *DisputeHandler) GetEligibility(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	orderID := e.Request.PathValue("orderId")
	ticketID := e.Request.URL.Query().Get("ticket_id")

	eligibility, err := h.disputeService.ValidateTicketForDispute(e.Request.Context(), ticketID, orderID)
	if err != nil {
		return escrowError(err)
	}

	return e.JSON(http.StatusOK, eligibility)
}

// CreateDispute - Validate escrow preconditions and open a dispute
func (h *DisputeHandler) CreateDispute(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var params services.CreateDisputeParams
	if err := e.BindBody(&params); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	params.OrderID = e.Request.PathValue("orderId")

	dispute, err := h.disputeService.CreateDispute(e.Request.Context(), e.Auth.Id, params)
	if err != nil {
		var precondition *services.PreconditionError
		if errors.As(err, &precondition) {
			return apis.NewBadRequestError(precondition.Message, nil)
		}
		if errors.Is(err, status.ErrAmountExceedsEscrow) {
			return apis.NewBadRequestError(status.ErrAmountExceedsEscrow.Error(), nil)
		}
		return escrowError(err)
	}

	return e.JSON(http.StatusCreated, dispute)
}

// CancelDispute - Withdraw a dispute while it awaits the seller's response
func (h *DisputeHandler) CancelDispute(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	disputeID := e.Request.PathValue("id")

	dispute, err := h.findDispute(e, disputeID)
	if err != nil {
		return err
	}

	if err := h.disputeService.CancelDispute(e.Request.Context(), e.Auth.Id, *dispute); err != nil {
		if errors.Is(err, status.ErrDisputeNotCancellable) {
			return apis.NewBadRequestError(status.ErrDisputeNotCancellable.Error(), nil)
		}
		return escrowError(err)
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

// GetActions - List the actions the caller's role may take on a dispute
func (h *DisputeHandler) GetActions(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	disputeID := e.Request.PathValue("id")
	role := models.Role(e.Request.URL.Query().Get("role"))
	if role != models.RoleBuyer && role != models.RoleSeller {
		return apis.NewBadRequestError("role must be buyer or seller", nil)
	}

	dispute, err := h.findDispute(e, disputeID)
	if err != nil {
		return err
	}

	actions := h.disputeService.ActionsFor(*dispute, role)
	return e.JSON(http.StatusOK, map[string]any{
		"dispute_id": dispute.ID,
		"status":     dispute.Status,
		"actions":    actions,
	})
}

// findDispute resolves a dispute id within the caller's dispute list; the
// list endpoint is already scoped to the caller by the backend.
func (h *DisputeHandler) findDispute(e *core.RequestEvent, disputeID string) (*models.Dispute, error) {
	disputes, err := h.escrowAPI.ListDisputes(e.Request.Context())
	if err != nil {
		return nil, escrowError(err)
	}
	for i := range disputes {
		if disputes[i].ID == disputeID {
			return &disputes[i], nil
		}
	}
	return nil, apis.NewNotFoundError("Dispute not found", nil)
}

// escrowError maps backend failures for the response: a 4xx message from the
// escrow service passes through verbatim, anything else becomes a generic
// try-again error.
func escrowError(err error) error {
	var apiErr *escrowapi.APIError
	if errors.As(err, &apiErr) {
		return apis.NewApiError(apiErr.StatusCode, apiErr.Message, nil)
	}
	return apis.NewApiError(http.StatusBadGateway, "Escrow service unavailable, please try again", nil)
}
