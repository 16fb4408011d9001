package services

import (
	"log"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"ticket-resale/config"
	"ticket-resale/models"
	"ticket-resale/monitoring"
)

// BalanceService derives a seller's pending vs. available funds from their
// transferred tickets. Funds become available HoldingPeriodDays calendar days
// after the ticketed event's start, compared at day granularity.
type BalanceService struct {
	holdingPeriodDays int
	location          *time.Location

	// nowFn is swapped in tests to pin the boundary day.
	nowFn func() time.Time
}

func NewBalanceService(cfg *config.Config) *BalanceService {
	loc := time.Local
	if cfg.SettlementTZ != "" {
		parsed, err := time.LoadLocation(cfg.SettlementTZ)
		if err != nil {
			log.Printf("Invalid SETTLEMENT_TZ %q, falling back to local time: %v", cfg.SettlementTZ, err)
		} else {
			loc = parsed
		}
	}

	return &BalanceService{
		holdingPeriodDays: cfg.HoldingPeriodDays,
		location:          loc,
		nowFn:             time.Now,
	}
}

// Derive computes the balance from the seller's full ticket set. Only tickets
// in transferred status contribute; listing a ticket never creates balance.
// The computation is pure and synchronous.
func (s *BalanceService) Derive(tickets []models.Ticket) models.Balance {
	monitoring.TrackBalanceComputation()

	balance := models.ZeroBalance()
	today := s.truncateToMidnight(s.nowFn())

	for _, ticket := range tickets {
		if ticket.Status != models.TicketTransferred {
			continue
		}

		value := ticketValue(ticket)
		if value.IsZero() {
			continue
		}

		// Undated tickets stay pending; never optimistically available.
		if ticket.EventStartDate == nil || ticket.EventStartDate.IsZero() {
			balance.Pending = balance.Pending.Add(value)
			continue
		}

		releaseDate := s.truncateToMidnight(*ticket.EventStartDate).AddDate(0, 0, s.holdingPeriodDays)
		if !today.Before(releaseDate) {
			balance.Available = balance.Available.Add(value)
		} else {
			balance.Pending = balance.Pending.Add(value)
		}
	}

	balance.Total = balance.Available.Add(balance.Pending)
	return balance
}

// ticketValue guards against malformed input: a non-finite price or a
// non-positive quantity contributes nothing rather than corrupting the sum.
func ticketValue(ticket models.Ticket) decimal.Decimal {
	if math.IsNaN(ticket.UnitPrice) || math.IsInf(ticket.UnitPrice, 0) || ticket.UnitPrice < 0 {
		return decimal.Zero
	}
	if ticket.Quantity <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(ticket.UnitPrice).Mul(decimal.NewFromInt(int64(ticket.Quantity)))
}

// truncateToMidnight drops the time-of-day component in the settlement
// timezone, so boundary comparison is day-granular.
func (s *BalanceService) truncateToMidnight(t time.Time) time.Time {
	t = t.In(s.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.location)
}
