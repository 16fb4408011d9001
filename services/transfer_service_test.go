package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-resale/internal/services/escrowapi"
	"ticket-resale/internal/status"
	"ticket-resale/utils"
)

func setupTestTransferService(api *fakeEscrowAPI) *TransferService {
	return NewTransferService(api, utils.NewMemoryCache(), NewNotifier(nil), 500, 5*1024*1024)
}

func TestTransferService_EmptySubmissionIsValid(t *testing.T) {
	api := &fakeEscrowAPI{}
	service := setupTestTransferService(api)

	err := service.MarkTransferred(context.Background(), "seller-1", "order-1", TransferForm{})

	require.NoError(t, err)
	assert.Equal(t, 1, api.markCalls)

	state, errMsg := service.State(SideMarkTransferred, "order-1")
	assert.Equal(t, SubmissionSuccess, state)
	assert.Empty(t, errMsg)
}

func TestTransferService_RejectsNonImageEvidence(t *testing.T) {
	api := &fakeEscrowAPI{}
	service := setupTestTransferService(api)

	err := service.MarkTransferred(context.Background(), "seller-1", "order-1", TransferForm{
		Evidence: &escrowapi.EvidenceFile{
			Name: "receipt.pdf",
			MIME: "application/pdf",
			Size: 1024,
			Data: strings.NewReader("%PDF"),
		},
	})

	assert.ErrorIs(t, err, status.ErrEvidenceNotImage)
	// Rejected before any network call.
	assert.Equal(t, 0, api.markCalls)
}

func TestTransferService_RejectsOversizedEvidence(t *testing.T) {
	api := &fakeEscrowAPI{}
	service := setupTestTransferService(api)

	err := service.ConfirmReceipt(context.Background(), "buyer-1", "order-1", TransferForm{
		Evidence: &escrowapi.EvidenceFile{
			Name: "huge.png",
			MIME: "image/png",
			Size: 5*1024*1024 + 1,
			Data: strings.NewReader(""),
		},
	})

	assert.ErrorIs(t, err, status.ErrEvidenceTooLarge)
	assert.Equal(t, 0, api.confirmCalls)
}

func TestTransferService_AcceptsImageAtSizeLimit(t *testing.T) {
	api := &fakeEscrowAPI{}
	service := setupTestTransferService(api)

	err := service.ConfirmReceipt(context.Background(), "buyer-1", "order-1", TransferForm{
		Evidence: &escrowapi.EvidenceFile{
			Name: "proof.jpg",
			MIME: "image/jpeg",
			Size: 5 * 1024 * 1024,
			Data: strings.NewReader("jpeg-bytes"),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, api.confirmCalls)
	require.NotNil(t, api.lastTransfer.Evidence)
	assert.Equal(t, "proof.jpg", api.lastTransfer.Evidence.Name)
}

func TestTransferService_TruncatesLongNotes(t *testing.T) {
	api := &fakeEscrowAPI{}
	service := setupTestTransferService(api)

	longNotes := strings.Repeat("x", 600)
	err := service.MarkTransferred(context.Background(), "seller-1", "order-1", TransferForm{Notes: longNotes})

	require.NoError(t, err)
	assert.Len(t, api.lastTransfer.Notes, 500)
}

func TestTransferService_ErrorPreservesForm(t *testing.T) {
	api := &fakeEscrowAPI{transferErr: errors.New("ticket is not pending transfer")}
	service := setupTestTransferService(api)

	form := TransferForm{Notes: "handed over at the gate"}
	err := service.MarkTransferred(context.Background(), "seller-1", "order-1", form)

	require.Error(t, err)

	state, errMsg := service.State(SideMarkTransferred, "order-1")
	assert.Equal(t, SubmissionError, state)
	// Server message is surfaced verbatim.
	assert.Contains(t, errMsg, "ticket is not pending transfer")

	preserved, ok := service.Form(SideMarkTransferred, "order-1")
	require.True(t, ok)
	assert.Equal(t, "handed over at the gate", preserved.Notes)
}

func TestTransferService_ErrorThenRetrySucceeds(t *testing.T) {
	api := &fakeEscrowAPI{transferErr: errors.New("temporary failure")}
	service := setupTestTransferService(api)

	err := service.MarkTransferred(context.Background(), "seller-1", "order-1", TransferForm{Notes: "try one"})
	require.Error(t, err)

	// No automatic retry happened.
	assert.Equal(t, 1, api.markCalls)

	api.transferErr = nil
	err = service.MarkTransferred(context.Background(), "seller-1", "order-1", TransferForm{Notes: "try one"})
	require.NoError(t, err)
	assert.Equal(t, 2, api.markCalls)

	state, _ := service.State(SideMarkTransferred, "order-1")
	assert.Equal(t, SubmissionSuccess, state)
	_, ok := service.Form(SideMarkTransferred, "order-1")
	assert.False(t, ok, "preserved form is dropped after success")
}

func TestTransferService_InFlightSubmissionIsRejected(t *testing.T) {
	api := &fakeEscrowAPI{}
	service := setupTestTransferService(api)

	service.mu.Lock()
	service.submissions[submissionKey(SideConfirmReceipt, "order-1")] = &submission{state: SubmissionSubmitting}
	service.mu.Unlock()

	err := service.ConfirmReceipt(context.Background(), "buyer-1", "order-1", TransferForm{})

	assert.ErrorIs(t, err, status.ErrSubmissionInFlight)
	assert.Equal(t, 0, api.confirmCalls)
}

func TestTransferService_SidesTrackStateIndependently(t *testing.T) {
	api := &fakeEscrowAPI{}
	service := setupTestTransferService(api)

	require.NoError(t, service.MarkTransferred(context.Background(), "seller-1", "order-1", TransferForm{}))

	state, _ := service.State(SideMarkTransferred, "order-1")
	assert.Equal(t, SubmissionSuccess, state)

	state, _ = service.State(SideConfirmReceipt, "order-1")
	assert.Equal(t, SubmissionIdle, state)
}

func TestTransferService_SuccessInvalidatesCaches(t *testing.T) {
	api := &fakeEscrowAPI{}
	cache := utils.NewMemoryCache()
	service := NewTransferService(api, cache, NewNotifier(nil), 500, 5*1024*1024)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "escrow:order:order-1", "{}", 0))
	require.NoError(t, cache.Set(ctx, "balance:buyer-1", "{}", 0))

	require.NoError(t, service.ConfirmReceipt(ctx, "buyer-1", "order-1", TransferForm{}))

	_, ok, _ := cache.Get(ctx, "escrow:order:order-1")
	assert.False(t, ok)
	_, ok, _ = cache.Get(ctx, "balance:buyer-1")
	assert.False(t, ok)
}
