package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"ticket-resale/internal/services/escrowapi"
	"ticket-resale/internal/status"
	"ticket-resale/monitoring"
	"ticket-resale/utils"
)

// TransferSide distinguishes the two symmetric handshake operations.
type TransferSide string

const (
	SideMarkTransferred TransferSide = "mark_transferred"
	SideConfirmReceipt  TransferSide = "confirm_receipt"
)

// SubmissionState is the workflow state exposed to the UI.
type SubmissionState string

const (
	SubmissionIdle       SubmissionState = "idle"
	SubmissionSubmitting SubmissionState = "submitting"
	SubmissionSuccess    SubmissionState = "success"
	SubmissionError      SubmissionState = "error"
)

// TransferForm is the shared payload of both handshake sides. Both fields
// are optional; an empty form is a valid submission.
type TransferForm struct {
	Notes    string
	Evidence *escrowapi.EvidenceFile
}

// TransferService orchestrates the two-sided transfer confirmation handshake:
// the seller marks the ticket transferred, the buyer confirms receipt. It
// validates the payload before any network call and never retries a failed
// submission.
type TransferService struct {
	api             escrowapi.API
	cache           utils.Cache
	notifier        *Notifier
	notesMaxLength  int
	evidenceMaxSize int64

	mu          sync.Mutex
	submissions map[string]*submission
}

type submission struct {
	state  SubmissionState
	errMsg string
	// form is kept on error so the user retries without re-entering input.
	form TransferForm
}

func NewTransferService(api escrowapi.API, cache utils.Cache, notifier *Notifier, notesMaxLength int, evidenceMaxSize int64) *TransferService {
	return &TransferService{
		api:             api,
		cache:           cache,
		notifier:        notifier,
		notesMaxLength:  notesMaxLength,
		evidenceMaxSize: evidenceMaxSize,
		submissions:     make(map[string]*submission),
	}
}

// MarkTransferred submits the seller side of the handshake. The ticket's
// actual status flip happens server-side on buyer confirmation; this call is
// informational until then and nothing is mutated optimistically.
func (s *TransferService) MarkTransferred(ctx context.Context, userID, orderID string, form TransferForm) error {
	return s.submit(ctx, SideMarkTransferred, userID, orderID, form)
}

// ConfirmReceipt submits the buyer side of the handshake, signalling escrow
// release eligibility to the backend.
func (s *TransferService) ConfirmReceipt(ctx context.Context, userID, orderID string, form TransferForm) error {
	return s.submit(ctx, SideConfirmReceipt, userID, orderID, form)
}

// State reports the submission state for an order/side pair, for the UI to
// disable the submit affordance while a request is in flight.
func (s *TransferService) State(side TransferSide, orderID string) (SubmissionState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[submissionKey(side, orderID)]
	if !ok {
		return SubmissionIdle, ""
	}
	return sub.state, sub.errMsg
}

// Form returns the preserved form of a failed submission so it can be
// resubmitted without re-entering notes or evidence.
func (s *TransferService) Form(side TransferSide, orderID string) (TransferForm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[submissionKey(side, orderID)]
	if !ok || sub.state != SubmissionError {
		return TransferForm{}, false
	}
	return sub.form, true
}

// ValidateEvidence checks the optional attachment before submission: image
// MIME types only, size capped. A nil file is valid.
func (s *TransferService) ValidateEvidence(file *escrowapi.EvidenceFile) error {
	if file == nil {
		return nil
	}
	if !strings.HasPrefix(file.MIME, "image/") {
		return status.ErrEvidenceNotImage
	}
	if file.Size > s.evidenceMaxSize {
		return status.ErrEvidenceTooLarge
	}
	return nil
}

// TruncateNotes caps the free-text notes at the configured length. Over-long
// notes are truncated, not rejected.
func (s *TransferService) TruncateNotes(notes string) string {
	runes := []rune(notes)
	if len(runes) <= s.notesMaxLength {
		return notes
	}
	return string(runes[:s.notesMaxLength])
}

func (s *TransferService) submit(ctx context.Context, side TransferSide, userID, orderID string, form TransferForm) error {
	key := submissionKey(side, orderID)

	// Evidence validation happens before the in-flight guard so a rejected
	// file never consumes the submission slot.
	if err := s.ValidateEvidence(form.Evidence); err != nil {
		monitoring.TrackTransferSubmission(string(side), "rejected")
		return err
	}
	form.Notes = s.TruncateNotes(form.Notes)

	s.mu.Lock()
	sub, ok := s.submissions[key]
	if !ok {
		sub = &submission{state: SubmissionIdle}
		s.submissions[key] = sub
	}
	if sub.state == SubmissionSubmitting {
		s.mu.Unlock()
		return status.ErrSubmissionInFlight
	}
	sub.state = SubmissionSubmitting
	sub.errMsg = ""
	s.mu.Unlock()

	payload := escrowapi.TransferSubmission{Notes: form.Notes, Evidence: form.Evidence}

	var err error
	switch side {
	case SideMarkTransferred:
		err = s.api.MarkTransferred(ctx, orderID, payload)
	case SideConfirmReceipt:
		err = s.api.ConfirmReceipt(ctx, orderID, payload)
	default:
		err = fmt.Errorf("unknown transfer side: %s", side)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		sub.state = SubmissionError
		// Backend rejections keep their exact message; everything else keeps
		// whatever the transport reported.
		var apiErr *escrowapi.APIError
		if errors.As(err, &apiErr) {
			sub.errMsg = apiErr.Message
		} else {
			sub.errMsg = err.Error()
		}
		sub.form = form
		monitoring.TrackTransferSubmission(string(side), "error")
		return err
	}

	sub.state = SubmissionSuccess
	sub.form = TransferForm{}
	monitoring.TrackTransferSubmission(string(side), "success")

	// The caller refetches ticket state from the server after success; here
	// we only drop derived caches that the handshake makes stale.
	if s.cache != nil {
		keys := []string{escrowCacheKey(orderID), balanceCacheKey(userID)}
		if err := s.cache.Invalidate(ctx, keys...); err != nil {
			// Stale entries expire at TTL anyway; not a submission failure.
			log.Printf("Error invalidating caches for order %s: %v", orderID, err)
		}
	}

	switch side {
	case SideMarkTransferred:
		s.notifier.TransferMarked(userID, orderID)
	case SideConfirmReceipt:
		s.notifier.ReceiptConfirmed(userID, orderID)
	}

	return nil
}

func submissionKey(side TransferSide, orderID string) string {
	return fmt.Sprintf("%s:%s", side, orderID)
}

func balanceCacheKey(userID string) string {
	return fmt.Sprintf("balance:%s", userID)
}
