package midtrans

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/charity/internal/gateway/domain"
)

const (
	Provider = "midtrans"

	SandboxBaseURL    = "https://app.sandbox.midtrans.com"
	ProductionBaseURL = "https://app.midtrans.com"

	snapTransactionsPath = "/snap/v1/transactions"

	// Snap rejects item names longer than this.
	maxItemNameLength = 50
)

type Config struct {
	ServerKey  string
	Production bool
	BaseURL    string
	HTTPClient *http.Client
}

// Gateway talks to the Midtrans Snap API and authenticates its HTTP
// notifications.
type Gateway struct {
	serverKey string
	baseURL   string
	client    *http.Client
}

func New(cfg Config) *Gateway {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = SandboxBaseURL
		if cfg.Production {
			baseURL = ProductionBaseURL
		}
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gateway{
		serverKey: strings.TrimSpace(cfg.ServerKey),
		baseURL:   baseURL,
		client:    client,
	}
}

func (g *Gateway) Provider() string {
	return Provider
}

type snapRequest struct {
	TransactionDetails transactionDetails `json:"transaction_details"`
	CustomerDetails    domain.Customer    `json:"customer_details"`
	ItemDetails        []itemDetail       `json:"item_details,omitempty"`
}

type transactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type itemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type snapErrorResponse struct {
	ErrorMessages []string `json:"error_messages"`
}

// CreateTransaction opens a Snap session. It is never retried: a second
// call for the same order id is rejected by Midtrans as a duplicate.
func (g *Gateway) CreateTransaction(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error) {
	if g.serverKey == "" {
		return nil, domain.ErrNotConfigured
	}

	body := snapRequest{
		TransactionDetails: transactionDetails{
			OrderID:     req.OrderID,
			GrossAmount: req.Amount,
		},
		CustomerDetails: req.Customer,
	}
	if name := truncate(strings.TrimSpace(req.ItemName), maxItemNameLength); name != "" {
		body.ItemDetails = []itemDetail{{
			ID:       req.ItemID,
			Price:    req.Amount,
			Quantity: 1,
			Name:     name,
		}}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+snapTransactionsPath, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(g.serverKey, "")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("midtrans create transaction: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("midtrans read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &domain.GatewayError{
			Provider:   Provider,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(payload, resp.StatusCode),
		}
	}

	var tx domain.Transaction
	if err := json.Unmarshal(payload, &tx); err != nil {
		return nil, fmt.Errorf("midtrans decode response: %w", err)
	}
	if strings.TrimSpace(tx.Token) == "" {
		return nil, &domain.GatewayError{
			Provider:   Provider,
			StatusCode: resp.StatusCode,
			Message:    "midtrans response missing token",
		}
	}
	return &tx, nil
}

func errorMessage(payload []byte, status int) string {
	var snapErr snapErrorResponse
	if err := json.Unmarshal(payload, &snapErr); err == nil && len(snapErr.ErrorMessages) > 0 {
		return strings.Join(snapErr.ErrorMessages, ", ")
	}
	return fmt.Sprintf("midtrans request failed with status %d", status)
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
