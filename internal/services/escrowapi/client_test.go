package escrowapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-resale/internal/status"
	"ticket-resale/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{BaseURL: server.URL, Token: "test-token"})
}

func TestClient_GetEscrowByOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/escrow/order/order-1", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		json.NewEncoder(w).Encode(models.EscrowTransaction{
			ID:           "escrow-1",
			OrderID:      "order-1",
			LockedAmount: 200,
			Status:       models.EscrowLocked,
		})
	})

	escrow, err := client.GetEscrowByOrder(context.Background(), "order-1")

	require.NoError(t, err)
	assert.Equal(t, "escrow-1", escrow.ID)
	assert.Equal(t, models.EscrowLocked, escrow.Status)
}

func TestClient_GetEscrowByOrder_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetEscrowByOrder(context.Background(), "order-1")

	assert.ErrorIs(t, err, status.ErrEscrowNotFound)
}

func TestClient_CreateDispute_SendsBody(t *testing.T) {
	var received CreateDisputeRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/escrow/disputes", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Dispute{ID: "dispute-1", Status: models.DisputeAwaitingSellerResponse})
	})

	dispute, err := client.CreateDispute(context.Background(), CreateDisputeRequest{
		EscrowTransaction: "escrow-1",
		DisputeType:       models.DisputeNotReceived,
		Description:       "no ticket arrived",
		DisputedAmount:    200,
	})

	require.NoError(t, err)
	assert.Equal(t, "dispute-1", dispute.ID)
	assert.Equal(t, "escrow-1", received.EscrowTransaction)
	assert.Equal(t, models.DisputeNotReceived, received.DisputeType)
}

func TestClient_FourXXMessageIsVerbatim(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "dispute already exists for this order"})
	})

	_, err := client.CreateDispute(context.Background(), CreateDisputeRequest{EscrowTransaction: "escrow-1"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "dispute already exists for this order", apiErr.Message)
}

func TestClient_FourXXWithoutBodyFallsBackToStatusText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := client.CancelDispute(context.Background(), "dispute-1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Forbidden", apiErr.Message)
}

func TestClient_CancelDispute_Path(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.CancelDispute(context.Background(), "dispute-42"))
	assert.Equal(t, "/escrow/disputes/dispute-42/cancel", gotPath)
}

func TestClient_ListDisputes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/escrow/disputes", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Dispute{
			{ID: "dispute-1", OrderID: "order-1", Status: models.DisputeUnderReview},
			{ID: "dispute-2", OrderID: "order-2", Status: models.DisputeCancelled},
		})
	})

	disputes, err := client.ListDisputes(context.Background())

	require.NoError(t, err)
	require.Len(t, disputes, 2)
	assert.Equal(t, models.DisputeUnderReview, disputes[0].Status)
}

func TestClient_MarkTransferred_Multipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/escrow/orders/order-1/mark-transferred", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))

		assert.Equal(t, "left at will call", r.FormValue("notes"))

		file, header, err := r.FormFile("evidence_file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "proof.png", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(content))

		w.WriteHeader(http.StatusOK)
	})

	err := client.MarkTransferred(context.Background(), "order-1", TransferSubmission{
		Notes: "left at will call",
		Evidence: &EvidenceFile{
			Name: "proof.png",
			MIME: "image/png",
			Size: 9,
			Data: strings.NewReader("png-bytes"),
		},
	})

	require.NoError(t, err)
}

func TestClient_ConfirmReceipt_EmptySubmission(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/escrow/orders/order-1/confirm-receipt", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.ConfirmReceipt(context.Background(), "order-1", TransferSubmission{}))
}
