package paymee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/oudaybenrhouma/ghalinino-api/internal/config"
)

// Client calls the hosted payment gateway. The gateway holds the card flow;
// we only create sessions and verify their outcome server-side.
type Client struct {
	baseURL    string
	apiKey     string
	returnURL  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	logger     *zap.Logger
}

// NewClient creates a gateway client from config
func NewClient(cfg config.GatewayConfig, logger *zap.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "paymee",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		returnURL: cfg.ReturnURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: breaker,
		logger:  logger,
	}
}

// Enabled reports whether the gateway is configured
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Session is a hosted payment session the customer is redirected to
type Session struct {
	Token       string
	RedirectURL string
}

type createSessionRequest struct {
	Amount    int64  `json:"amount"`    // millimes
	OrderRef  string `json:"note"`      // order number shown on the gateway page
	ReturnURL string `json:"return_url"`
}

type createSessionResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Token      string `json:"token"`
		PaymentURL string `json:"payment_url"`
	} `json:"data"`
	Message string `json:"message"`
}

// CreateSession opens a hosted payment session for an order
func (c *Client) CreateSession(ctx context.Context, amount int64, orderNumber string) (*Session, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("payment gateway is not configured")
	}

	body, err := json.Marshal(createSessionRequest{
		Amount:    amount,
		OrderRef:  orderNumber,
		ReturnURL: c.returnURL,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/payments/create", bytes.NewReader(body))
	if err != nil {
		c.logger.Error("Gateway create session failed", zap.Error(err), zap.String("order_number", orderNumber))
		return nil, err
	}
	defer resp.Body.Close()

	var result createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	if !result.Status || result.Data.Token == "" {
		return nil, fmt.Errorf("gateway rejected session: %s", result.Message)
	}

	return &Session{
		Token:       result.Data.Token,
		RedirectURL: result.Data.PaymentURL,
	}, nil
}

type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		PaymentStatus bool `json:"payment_status"`
	} `json:"data"`
	Message string `json:"message"`
}

// VerifySession checks a session's outcome server-side. The gateway's
// redirect back to the storefront is never trusted on its own.
func (c *Client) VerifySession(ctx context.Context, token string) (bool, error) {
	if !c.Enabled() {
		return false, fmt.Errorf("payment gateway is not configured")
	}

	resp, err := c.do(ctx, http.MethodGet, "/payments/"+token+"/check", nil)
	if err != nil {
		c.logger.Error("Gateway verify session failed", zap.Error(err), zap.String("token", token))
		return false, err
	}
	defer resp.Body.Close()

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode gateway response: %w", err)
	}
	if !result.Status {
		return false, fmt.Errorf("gateway verify failed: %s", result.Message)
	}

	return result.Data.PaymentStatus, nil
}

func (c *Client) do(ctx context.Context, method, path string, body *bytes.Reader) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) {
		var req *http.Request
		var err error
		if body != nil {
			req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		} else {
			req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
		}
		if err != nil {
			return nil, err
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Token "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
		}

		return resp, nil
	})
}
