package status

import "errors"

var (
	ErrDisputeNotCancellable = errors.New("dispute: dispute can only be cancelled while awaiting seller response")
	ErrAmountExceedsEscrow   = errors.New("dispute: disputed amount exceeds escrow locked amount")
	ErrEvidenceNotImage      = errors.New("transfer: only images accepted")
	ErrEvidenceTooLarge      = errors.New("transfer: evidence file exceeds 5 MB limit")
	ErrSubmissionInFlight    = errors.New("transfer: submission already in progress")
	ErrEscrowNotFound        = errors.New("escrow: escrow transaction not found")
)
