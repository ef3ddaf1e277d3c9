// pkg/kpayclient/client.go
package kpayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to the kpay HTTP API on behalf of one account.
type Client struct {
	baseURL    string
	address    string
	apiKey     string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details interface{}
}

func (e *APIError) Error() string {
	if reason, ok := e.Details.(string); ok && reason != "" {
		return fmt.Sprintf("kpay api %d %s: %s (%s)", e.Status, e.Code, e.Message, reason)
	}
	return fmt.Sprintf("kpay api %d %s: %s", e.Status, e.Code, e.Message)
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Order mirrors a purchase order as served by the API. Amounts are base-unit
// decimal strings.
type Order struct {
	Owner            string     `json:"owner"`
	TokenAddress     string     `json:"token_address"`
	PurchaseInterval uint64     `json:"purchase_interval"`
	KpayAmount       string     `json:"kpay_amount"`
	LastExecutedAt   *time.Time `json:"last_executed_at"`
	ExecutionCount   uint64     `json:"execution_count"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details"`
	} `json:"error"`
}

func NewClient(baseURL, address, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		address:    address,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login exchanges the API key for a bearer token and keeps it for later calls.
func (c *Client) Login(ctx context.Context) error {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"address": c.address, "api_key": c.apiKey}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, false, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return fmt.Errorf("login response carried no token")
	}

	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	return nil
}

// GetMyOrder returns the caller's purchase order and whether it is active.
func (c *Client) GetMyOrder(ctx context.Context) (*Order, bool, error) {
	var out struct {
		Order  Order `json:"order"`
		Active bool  `json:"active"`
	}
	if err := c.authorized(ctx, http.MethodGet, "/scheduler/orders/me", nil, &out); err != nil {
		return nil, false, err
	}
	return &out.Order, out.Active, nil
}

// ExecutePurchase triggers one execution of the caller's order.
func (c *Client) ExecutePurchase(ctx context.Context) (*Order, error) {
	var out struct {
		Order Order `json:"order"`
	}
	if err := c.authorized(ctx, http.MethodPost, "/scheduler/orders/execute", nil, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

// authorized logs in on demand and once more when the token has expired.
func (c *Client) authorized(ctx context.Context, method, path string, body, out interface{}) error {
	c.mu.Lock()
	hasToken := c.token != ""
	c.mu.Unlock()

	if !hasToken {
		if err := c.Login(ctx); err != nil {
			return err
		}
	}

	err := c.do(ctx, method, path, body, true, out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		if err := c.Login(ctx); err != nil {
			return err
		}
		return c.do(ctx, method, path, body, true, out)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, auth bool, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("kpay API base URL is not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		c.mu.Lock()
		req.Header.Set("Authorization", "Bearer "+c.token)
		c.mu.Unlock()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
