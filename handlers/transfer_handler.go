package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-resale/internal/services/escrowapi"
	"ticket-resale/internal/status"
	"ticket-resale/services"
)

type TransferHandler struct {
	app             *pocketbase.PocketBase
	transferService *services.TransferService
}

func NewTransferHandler(app *pocketbase.PocketBase, transferService *services.TransferService) *TransferHandler {
	return &TransferHandler{
		app:             app,
		transferService: transferService,
	}
}

// MarkTransferred - Seller side of the transfer handshake
func (h *TransferHandler) MarkTransferred(e *core.RequestEvent) error {
	return h.submit(e, services.SideMarkTransferred)
}

// ConfirmReceipt - Buyer side of the transfer handshake
func (h *TransferHandler) ConfirmReceipt(e *core.RequestEvent) error {
	return h.submit(e, services.SideConfirmReceipt)
}

// GetState - Current submission state for an order/side pair
func (h *TransferHandler) GetState(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	orderID := e.Request.PathValue("orderId")
	side := services.TransferSide(e.Request.URL.Query().Get("side"))
	if side != services.SideMarkTransferred && side != services.SideConfirmReceipt {
		return apis.NewBadRequestError("side must be mark_transferred or confirm_receipt", nil)
	}

	state, errMsg := h.transferService.State(side, orderID)
	resp := map[string]any{"state": state}
	if errMsg != "" {
		resp["error"] = errMsg
	}
	return e.JSON(http.StatusOK, resp)
}

func (h *TransferHandler) submit(e *core.RequestEvent, side services.TransferSide) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	orderID := e.Request.PathValue("orderId")
	form := services.TransferForm{
		Notes: e.Request.FormValue("notes"),
	}

	// Both fields are optional; a missing file or an empty body is fine.
	if file, header, err := e.Request.FormFile("evidence_file"); err == nil {
		defer file.Close()
		form.Evidence = &escrowapi.EvidenceFile{
			Name: header.Filename,
			MIME: header.Header.Get("Content-Type"),
			Size: header.Size,
			Data: file,
		}
	}

	var submitErr error
	switch side {
	case services.SideMarkTransferred:
		submitErr = h.transferService.MarkTransferred(e.Request.Context(), e.Auth.Id, orderID, form)
	case services.SideConfirmReceipt:
		submitErr = h.transferService.ConfirmReceipt(e.Request.Context(), e.Auth.Id, orderID, form)
	}

	if submitErr != nil {
		switch {
		case errors.Is(submitErr, status.ErrEvidenceNotImage):
			return apis.NewBadRequestError("only images accepted", nil)
		case errors.Is(submitErr, status.ErrEvidenceTooLarge):
			return apis.NewBadRequestError(status.ErrEvidenceTooLarge.Error(), nil)
		case errors.Is(submitErr, status.ErrSubmissionInFlight):
			return apis.NewApiError(http.StatusConflict, "A submission is already in progress", nil)
		}
		return escrowError(submitErr)
	}

	// The client refreshes ticket/order state from the server after success;
	// nothing is mutated optimistically here.
	return e.JSON(http.StatusOK, map[string]string{"state": string(services.SubmissionSuccess)})
}
