package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"filemart/internal/config"
)

// WebpayClient is the payment gateway collaborator. Create hands the
// gateway an order and gets the redirect target; Commit is the second
// round trip that actually proves payment after the customer returns.
type WebpayClient interface {
	CreateTransaction(ctx context.Context, buyOrder, sessionID string, amount int64, returnURL string) (*CreateTransactionResponse, error)
	CommitTransaction(ctx context.Context, confirmationToken string) (*CommitResponse, error)
}

type CreateTransactionResponse struct {
	Token       string `json:"token"`
	URL         string `json:"url"`
	RedirectURL string `json:"-"` // URL + "?token_ws=" + Token
}

type CommitResponse struct {
	BuyOrder     string `json:"buy_order"`
	SessionID    string `json:"session_id"`
	Amount       int64  `json:"amount"`
	Status       string `json:"status"` // AUTHORIZED, FAILED
	ResponseCode int    `json:"response_code"`
}

// Approved reports whether the gateway authorized the payment. Anything
// else is a decline, not an infrastructure error.
func (r *CommitResponse) Approved() bool {
	return r.Status == "AUTHORIZED" && r.ResponseCode == 0
}

type webpayClientImpl struct {
	httpClient   *http.Client
	baseApiURL   string
	commerceCode string
	apiKey       string
}

func NewWebpayClient(cfg *config.Webpay) WebpayClient {
	return &webpayClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:   cfg.BaseApiURL,
		commerceCode: cfg.CommerceCode,
		apiKey:       cfg.APIKey,
	}
}

func (c *webpayClientImpl) setHeaders(req *http.Request) {
	req.Header.Set("Tbk-Api-Key-Id", c.commerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

func (c *webpayClientImpl) CreateTransaction(ctx context.Context, buyOrder, sessionID string, amount int64, returnURL string) (*CreateTransactionResponse, error) {
	payload := map[string]interface{}{
		"buy_order":  buyOrder,
		"session_id": sessionID,
		"amount":     amount,
		"return_url": returnURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/rswebpaytransaction/api/webpay/v1.2/transactions",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webpay create request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("webpay error %d: %s", resp.StatusCode, string(b))
	}

	var result CreateTransactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode webpay response: %w", err)
	}

	result.RedirectURL = result.URL + "?token_ws=" + result.Token

	return &result, nil
}

func (c *webpayClientImpl) CommitTransaction(ctx context.Context, confirmationToken string) (*CommitResponse, error) {
	url := fmt.Sprintf(
		"%s/rswebpaytransaction/api/webpay/v1.2/transactions/%s",
		c.baseApiURL,
		confirmationToken,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create commit request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webpay commit request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf(
			"webpay commit failed: status=%d body=%s",
			resp.StatusCode,
			string(body),
		)
	}

	var result CommitResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode commit response: %w", err)
	}

	return &result, nil
}
