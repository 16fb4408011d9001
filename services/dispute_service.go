package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"ticket-resale/internal/services/escrowapi"
	"ticket-resale/internal/status"
	"ticket-resale/models"
	"ticket-resale/monitoring"
	"ticket-resale/utils"
)

// DisputeService gates dispute creation on escrow preconditions and mirrors
// the dispute lifecycle so only legal actions reach the backend.
type DisputeService struct {
	api       escrowapi.API
	cache     utils.Cache
	notifier  *Notifier
	escrowTTL time.Duration
}

func NewDisputeService(api escrowapi.API, cache utils.Cache, notifier *Notifier, escrowTTL time.Duration) *DisputeService {
	return &DisputeService{
		api:       api,
		cache:     cache,
		notifier:  notifier,
		escrowTTL: escrowTTL,
	}
}

// DisputeEligibility is the result of the precondition check. Reason is a
// stable, user-facing message set when CanCreateDispute is false; Escrow is
// returned on success so the caller can reuse it without a second fetch.
type DisputeEligibility struct {
	CanCreateDispute bool                      `json:"can_create_dispute"`
	Escrow           *models.EscrowTransaction `json:"escrow,omitempty"`
	Reason           string                    `json:"error,omitempty"`
}

// ValidateTicketForDispute runs the read-only precondition check, in fixed
// decision order: escrow existence, escrow status, existing dispute. It is
// idempotent and safe to repeat; the authoritative uniqueness constraint
// lives server-side, this is a UX short-circuit.
func (s *DisputeService) ValidateTicketForDispute(ctx context.Context, ticketID, orderID string) (DisputeEligibility, error) {
	escrow, err := s.getEscrow(ctx, orderID)
	if err == status.ErrEscrowNotFound {
		monitoring.TrackDisputeValidation("no_escrow")
		return DisputeEligibility{Reason: "no active escrow for this order"}, nil
	}
	if err != nil {
		return DisputeEligibility{}, fmt.Errorf("validateTicketForDispute: %w", err)
	}

	if !escrow.Status.Disputable() {
		monitoring.TrackDisputeValidation("not_locked")
		return DisputeEligibility{
			Reason: fmt.Sprintf("escrow not locked, current status: %s", escrow.Status),
		}, nil
	}

	// A failed dispute lookup must not block creation; the backend enforces
	// uniqueness. Log it and proceed as if no dispute was found.
	disputes, err := s.api.ListDisputes(ctx)
	if err != nil {
		log.Printf("Dispute lookup failed for order %s, proceeding: %v", orderID, err)
		monitoring.TrackDisputeLookupFailure()
		disputes = nil
	}
	for _, d := range disputes {
		if d.OrderID == orderID && d.Status.Active() {
			monitoring.TrackDisputeValidation("already_exists")
			return DisputeEligibility{Reason: "dispute already exists for this order"}, nil
		}
	}

	monitoring.TrackDisputeValidation("eligible")
	return DisputeEligibility{CanCreateDispute: true, Escrow: escrow}, nil
}

type CreateDisputeParams struct {
	TicketID       string             `json:"ticket_id"`
	OrderID        string             `json:"order_id"`
	Type           models.DisputeType `json:"dispute_type"`
	Description    string             `json:"description"`
	Evidence       []string           `json:"evidence,omitempty"`
	DisputedAmount float64            `json:"disputed_amount"`
}

// CreateDispute validates preconditions, then opens the dispute against the
// escrow transaction. A zero disputed amount defaults to the full locked
// amount; anything above the locked amount is rejected before the call.
func (s *DisputeService) CreateDispute(ctx context.Context, raisedBy string, params CreateDisputeParams) (*models.Dispute, error) {
	eligibility, err := s.ValidateTicketForDispute(ctx, params.TicketID, params.OrderID)
	if err != nil {
		return nil, err
	}
	if !eligibility.CanCreateDispute {
		return nil, &PreconditionError{Message: eligibility.Reason}
	}
	escrow := eligibility.Escrow

	amount := decimal.NewFromFloat(params.DisputedAmount)
	locked := decimal.NewFromFloat(escrow.LockedAmount)
	if amount.IsZero() {
		amount = locked
	}
	if amount.GreaterThan(locked) {
		return nil, status.ErrAmountExceedsEscrow
	}

	amountF, _ := amount.Float64()
	dispute, err := s.api.CreateDispute(ctx, escrowapi.CreateDisputeRequest{
		EscrowTransaction: escrow.ID,
		DisputeType:       params.Type,
		Description:       params.Description,
		Evidence:          params.Evidence,
		DisputedAmount:    amountF,
	})
	if err != nil {
		return nil, fmt.Errorf("createDispute: %w", err)
	}

	// Escrow flips to disputed server-side; drop the stale cache entry.
	s.invalidateEscrow(ctx, params.OrderID)
	s.notifier.DisputeOpened(raisedBy, params.OrderID, dispute.ID)

	return dispute, nil
}

// CancelDispute withdraws a dispute. Cancellation is only legal while the
// dispute awaits the seller's response; every other state is rejected here,
// before any network call.
func (s *DisputeService) CancelDispute(ctx context.Context, userID string, dispute models.Dispute) error {
	if !dispute.Status.Cancellable() {
		return status.ErrDisputeNotCancellable
	}

	if err := s.api.CancelDispute(ctx, dispute.ID); err != nil {
		return fmt.Errorf("cancelDispute: %w", err)
	}

	s.invalidateEscrow(ctx, dispute.OrderID)
	s.notifier.DisputeCancelled(userID, dispute.ID)
	return nil
}

// ActionsFor returns the user-facing actions the given role may take on the
// dispute in its current state.
func (s *DisputeService) ActionsFor(dispute models.Dispute, role models.Role) []models.DisputeAction {
	return dispute.Status.AllowedActions(role)
}

// getEscrow looks up the escrow transaction for an order, serving from the
// keyed cache when fresh.
func (s *DisputeService) getEscrow(ctx context.Context, orderID string) (*models.EscrowTransaction, error) {
	key := escrowCacheKey(orderID)

	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var escrow models.EscrowTransaction
			if err := json.Unmarshal([]byte(raw), &escrow); err == nil {
				return &escrow, nil
			}
		}
	}

	escrow, err := s.api.GetEscrowByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(escrow); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), s.escrowTTL); err != nil {
				log.Printf("Error caching escrow for order %s: %v", orderID, err)
			}
		}
	}

	return escrow, nil
}

func (s *DisputeService) invalidateEscrow(ctx context.Context, orderID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, escrowCacheKey(orderID)); err != nil {
		log.Printf("Error invalidating escrow cache for order %s: %v", orderID, err)
	}
}

func escrowCacheKey(orderID string) string {
	return fmt.Sprintf("escrow:order:%s", orderID)
}

// PreconditionError is a client-side rejection that never reached the
// network. The message is stable per failure case.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}
