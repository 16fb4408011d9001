package escrowapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sync"
	"time"

	"ticket-resale/internal/status"
	"ticket-resale/models"
	"ticket-resale/monitoring"
	"ticket-resale/utils"
)

// API is the boundary contract with the remote escrow/ticketing backend. The
// exact wire format is owned by that service; this client only mirrors it.
type API interface {
	GetEscrowByOrder(ctx context.Context, orderID string) (*models.EscrowTransaction, error)
	ListDisputes(ctx context.Context) ([]models.Dispute, error)
	CreateDispute(ctx context.Context, req CreateDisputeRequest) (*models.Dispute, error)
	CancelDispute(ctx context.Context, disputeID string) error
	MarkTransferred(ctx context.Context, orderID string, sub TransferSubmission) error
	ConfirmReceipt(ctx context.Context, orderID string, sub TransferSubmission) error
}

type CreateDisputeRequest struct {
	EscrowTransaction string             `json:"escrow_transaction"`
	DisputeType       models.DisputeType `json:"dispute_type"`
	Description       string             `json:"description"`
	Evidence          []string           `json:"evidence,omitempty"`
	DisputedAmount    float64            `json:"disputed_amount"`
}

// EvidenceFile is a single attachment already validated by the caller.
type EvidenceFile struct {
	Name string
	MIME string
	Size int64
	Data io.Reader
}

// TransferSubmission is the shared payload of both handshake sides.
type TransferSubmission struct {
	Notes    string
	Evidence *EvidenceFile
}

// APIError carries a 4xx rejection from the escrow backend. The message is
// shown to the user verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	// baseURL is the base url of the escrow backend.
	baseURL string

	// token is the opaque bearer credential attached to every call. Its
	// acquisition and refresh happen elsewhere; SetToken swaps it in.
	token string
	mu    sync.Mutex

	// breaker fails calls fast while the backend is down. It never retries.
	breaker *utils.CircuitBreaker

	// hc is the http client.
	hc *http.Client
}

func NewClient(c ClientConfig) *Client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: c.BaseURL,
		token:   c.Token,
		breaker: utils.NewCircuitBreaker("escrow-api"),
		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetToken replaces the bearer credential.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) getToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// GetEscrowByOrder fetches the escrow transaction held for an order. A 404
// from the backend means no escrow exists and maps to status.ErrEscrowNotFound.
func (c *Client) GetEscrowByOrder(ctx context.Context, orderID string) (*models.EscrowTransaction, error) {
	var escrow models.EscrowTransaction
	err := c.doJSON(ctx, "get_escrow", http.MethodGet, fmt.Sprintf("/escrow/order/%s", url.PathEscape(orderID)), nil, &escrow)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
			return nil, status.ErrEscrowNotFound
		}
		return nil, fmt.Errorf("getEscrowByOrder: %w", err)
	}
	return &escrow, nil
}

// ListDisputes returns the caller-scoped disputes.
func (c *Client) ListDisputes(ctx context.Context) ([]models.Dispute, error) {
	var disputes []models.Dispute
	if err := c.doJSON(ctx, "list_disputes", http.MethodGet, "/escrow/disputes", nil, &disputes); err != nil {
		return nil, fmt.Errorf("listDisputes: %w", err)
	}
	return disputes, nil
}

// CreateDispute opens a dispute against an escrow transaction.
func (c *Client) CreateDispute(ctx context.Context, req CreateDisputeRequest) (*models.Dispute, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("createDispute: json.Marshal: %w", err)
	}

	var dispute models.Dispute
	if err := c.doJSON(ctx, "create_dispute", http.MethodPost, "/escrow/disputes", bytes.NewReader(body), &dispute); err != nil {
		return nil, fmt.Errorf("createDispute: %w", err)
	}
	return &dispute, nil
}

// CancelDispute withdraws a dispute; the backend accepts this only from
// awaiting_seller_response, mirrored client-side by the dispute service.
func (c *Client) CancelDispute(ctx context.Context, disputeID string) error {
	err := c.doJSON(ctx, "cancel_dispute", http.MethodPost, fmt.Sprintf("/escrow/disputes/%s/cancel", url.PathEscape(disputeID)), nil, nil)
	if err != nil {
		return fmt.Errorf("cancelDispute: %w", err)
	}
	return nil
}

// MarkTransferred submits the seller side of the transfer handshake.
func (c *Client) MarkTransferred(ctx context.Context, orderID string, sub TransferSubmission) error {
	path := fmt.Sprintf("/escrow/orders/%s/mark-transferred", url.PathEscape(orderID))
	if err := c.doMultipart(ctx, "mark_transferred", path, sub); err != nil {
		return fmt.Errorf("markTransferred: %w", err)
	}
	return nil
}

// ConfirmReceipt submits the buyer side of the transfer handshake and signals
// escrow release eligibility to the backend.
func (c *Client) ConfirmReceipt(ctx context.Context, orderID string, sub TransferSubmission) error {
	path := fmt.Sprintf("/escrow/orders/%s/confirm-receipt", url.PathEscape(orderID))
	if err := c.doMultipart(ctx, "confirm_receipt", path, sub); err != nil {
		return fmt.Errorf("confirmReceipt: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, operation, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("http.NewRequest: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(operation, req, out)
}

func (c *Client) doMultipart(ctx context.Context, operation, path string, sub TransferSubmission) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if sub.Notes != "" {
		if err := w.WriteField("notes", sub.Notes); err != nil {
			return fmt.Errorf("multipart.WriteField: %w", err)
		}
	}
	if sub.Evidence != nil {
		part, err := w.CreateFormFile("evidence_file", sub.Evidence.Name)
		if err != nil {
			return fmt.Errorf("multipart.CreateFormFile: %w", err)
		}
		if _, err := io.Copy(part, sub.Evidence.Data); err != nil {
			return fmt.Errorf("multipart copy: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("multipart.Close: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("http.NewRequest: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(operation, req, nil)
}

func (c *Client) send(operation string, req *http.Request, out any) error {
	started := time.Now()
	defer func() {
		monitoring.TrackEscrowAPICall(operation, time.Since(started))
	}()

	reqID, err := utils.GenerateCode(8)
	if err == nil {
		req.Header.Set("X-Request-Id", reqID)
	}
	if token := c.getToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var resp *http.Response
	doErr := c.breaker.Execute(func() error {
		var err error
		resp, err = c.hc.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			return fmt.Errorf("escrow backend returned %d", resp.StatusCode)
		}
		return nil
	})
	if doErr != nil {
		return doErr
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("json.Decode: %w", err)
	}
	return nil
}

// decodeAPIError extracts the backend's message body so 4xx rejections can be
// surfaced verbatim; a missing or malformed body falls back to the status text.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var reply struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &reply); err == nil {
		if reply.Message != "" {
			apiErr.Message = reply.Message
		} else if reply.Error != "" {
			apiErr.Message = reply.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
