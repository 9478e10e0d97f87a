package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"angohost-storefront/internal/config"

	"github.com/sony/gobreaker/v2"
)

// ErrUpstreamRejected marks the known failure signature of the gateway's
// upstream integration (HTTP 400 or a PHP error page in the body). Callers
// surface a distinct message and offer the manual confirmation fallback.
var ErrUpstreamRejected = errors.New("gateway upstream rejected the session request")

// EmisClient talks to the EMIS/Multicaixa Express online payment gateway.
type EmisClient interface {
	CreateFrameToken(ctx context.Context, amount int64, reference string) (*FrameSession, error)
	GetPaymentStatus(ctx context.Context, token string) (*PaymentStatus, error)
}

// FrameSession is an embeddable payment frame session issued by the gateway.
type FrameSession struct {
	Token    string
	FrameURL string
}

// PaymentStatus is the gateway's view of a session, as returned by the
// status-check endpoint used for polling.
type PaymentStatus struct {
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

type emisClientImpl struct {
	httpClient  *http.Client
	baseApiURL  string
	frameToken  string
	callbackURL string

	sessionBreaker *gobreaker.CircuitBreaker[*FrameSession]
	statusBreaker  *gobreaker.CircuitBreaker[*PaymentStatus]
}

func NewEmisClient(emisCfg *config.Emis) EmisClient {
	settings := gobreaker.Settings{
		Name:    "emis-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &emisClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:     emisCfg.BaseApiURL,
		frameToken:     emisCfg.FrameToken,
		callbackURL:    emisCfg.CallbackURL,
		sessionBreaker: gobreaker.NewCircuitBreaker[*FrameSession](settings),
		statusBreaker:  gobreaker.NewCircuitBreaker[*PaymentStatus](settings),
	}
}

type emisFrameTokenResult struct {
	ID string `json:"id"`
}

func (c *emisClientImpl) CreateFrameToken(ctx context.Context, amount int64, reference string) (*FrameSession, error) {
	return c.sessionBreaker.Execute(func() (*FrameSession, error) {
		return c.createFrameToken(ctx, amount, reference)
	})
}

func (c *emisClientImpl) createFrameToken(ctx context.Context, amount int64, reference string) (*FrameSession, error) {
	payload := map[string]interface{}{
		"reference":   reference,
		"amount":      amount,
		"token":       c.frameToken,
		"mobile":      "PAYMENT",
		"card":        "DISABLED",
		"qrCode":      "PAYMENT",
		"callbackUrl": c.callbackURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/frameToken",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		if isUpstreamRejection(resp.StatusCode, string(b)) {
			return nil, fmt.Errorf("%w: status=%d body=%s", ErrUpstreamRejected, resp.StatusCode, string(b))
		}
		return nil, fmt.Errorf("emis error %d: %s", resp.StatusCode, string(b))
	}

	var result emisFrameTokenResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode emis response: %w", err)
	}
	if result.ID == "" {
		return nil, fmt.Errorf("emis response missing frame token id")
	}

	return &FrameSession{
		Token:    result.ID,
		FrameURL: fmt.Sprintf("%s/frame/%s", c.baseApiURL, result.ID),
	}, nil
}

func (c *emisClientImpl) GetPaymentStatus(ctx context.Context, token string) (*PaymentStatus, error) {
	return c.statusBreaker.Execute(func() (*PaymentStatus, error) {
		return c.getPaymentStatus(ctx, token)
	})
}

func (c *emisClientImpl) getPaymentStatus(ctx context.Context, token string) (*PaymentStatus, error) {
	url := fmt.Sprintf("%s/paymentStatus/%s", c.baseApiURL, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emis status request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("emis status failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var status PaymentStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("decode emis status response: %w", err)
	}

	return &status, nil
}

func isUpstreamRejection(statusCode int, body string) bool {
	return statusCode == http.StatusBadRequest || strings.Contains(body, "PHP")
}
