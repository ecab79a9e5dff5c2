package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"siipcoffee/internal/models"
)

// NetworkError wraps a transport-level failure reaching the backend.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError is a non-2xx response from the backend, carrying the
// backend-provided message when one was usable.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend error: status %d", e.Status)
}

// Client talks to the external NLP/order backend over HTTP. Every call
// takes a context and the underlying http.Client carries a timeout, so a
// hung backend can never hang a session indefinitely.
type Client struct {
	httpClient *http.Client
	baseURL    string
	observe    func(operation string, d time.Duration)
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// SetObserver registers a callback timing every backend request, keyed by
// operation name.
func (c *Client) SetObserver(fn func(operation string, d time.Duration)) {
	c.observe = fn
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Chat sends one chat turn to the backend.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*models.ChatReply, error) {
	var reply models.ChatReply
	if err := c.postJSON(ctx, "chat", "/api/chat", req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Reply adapts Chat to the session provider contract: one user turn in,
// one decoded reply out.
func (c *Client) Reply(ctx context.Context, userID, message string) (*models.ChatReply, error) {
	return c.Chat(ctx, ChatRequest{Message: message, UserID: userID, SessionID: userID})
}

// Menu fetches the full categorized menu.
func (c *Client) Menu(ctx context.Context) (models.Catalog, error) {
	var catalog models.Catalog
	if err := c.getJSON(ctx, "menu", "/api/menu", &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// MenuCategory fetches one category's items.
func (c *Client) MenuCategory(ctx context.Context, category string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := c.getJSON(ctx, "menu_category", "/api/menu/"+url.PathEscape(category), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	return items, nil
}

// OrderStatus is the backend's view of a user's active order.
type OrderStatus struct {
	Success      bool            `json:"success"`
	HasOrder     bool            `json:"has_order"`
	Message      string          `json:"message,omitempty"`
	OrderDetails json.RawMessage `json:"order_details,omitempty"`
}

// Order fetches the current order status for a user.
func (c *Client) Order(ctx context.Context, userID string) (*OrderStatus, error) {
	var status OrderStatus
	if err := c.getJSON(ctx, "order_status", "/api/order/"+url.PathEscape(userID), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// completeResponse is the body of POST /api/order/{userId}/complete.
type completeResponse struct {
	Success bool            `json:"success"`
	Receipt *models.Receipt `json:"receipt,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// CompleteOrder finalizes the user's order with the given payment method
// and returns the backend-issued receipt.
func (c *Client) CompleteOrder(ctx context.Context, userID string, paymentMethod models.PaymentMethod) (*models.Receipt, error) {
	path := fmt.Sprintf("/api/order/%s/complete?payment_method=%s",
		url.PathEscape(userID), url.QueryEscape(string(paymentMethod)))

	var resp completeResponse
	if err := c.postJSON(ctx, "complete_order", path, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Receipt == nil {
		msg := resp.Error
		if msg == "" {
			msg = "order completion failed"
		}
		return nil, &BackendError{Status: http.StatusOK, Message: msg}
	}
	return resp.Receipt, nil
}

// SubmitOrder posts an assembled checkout payload to the backend's order
// creation endpoint. A 2xx response without a receipt body returns a nil
// receipt; the caller snapshots its own.
func (c *Client) SubmitOrder(ctx context.Context, payload any) (*models.Receipt, error) {
	var resp completeResponse
	if err := c.postJSON(ctx, "submit_order", "/api/orders", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &BackendError{Status: http.StatusOK, Message: resp.Error}
	}
	return resp.Receipt, nil
}

// Health probes the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.observe != nil {
		c.observe("health", time.Since(start))
	}
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(op, req, out)
}

func (c *Client) postJSON(ctx context.Context, op, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.observe != nil {
		c.observe(op, time.Since(start))
	}
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		berr := &BackendError{Status: resp.StatusCode}
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &body) == nil {
			if body.Error != "" {
				berr.Message = body.Error
			} else if body.Message != "" {
				berr.Message = body.Message
			}
		}
		return berr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}
