// Package sandbox is an in-process payment gateway for local development and
// tests. It accepts every transaction and signs notifications the same way
// Midtrans does, using its own server key.
package sandbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/smallbiznis/charity/internal/gateway/domain"
	"github.com/smallbiznis/charity/internal/gateway/midtrans"
)

const Provider = "sandbox"

const defaultRedirectBase = "http://localhost:8080/sandbox/pay"

type Gateway struct {
	serverKey    string
	redirectBase string
}

func New(serverKey string) *Gateway {
	return &Gateway{
		serverKey:    strings.TrimSpace(serverKey),
		redirectBase: defaultRedirectBase,
	}
}

func (g *Gateway) Provider() string {
	return Provider
}

func (g *Gateway) ServerKey() string {
	return g.serverKey
}

func (g *Gateway) CreateTransaction(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error) {
	if strings.TrimSpace(req.OrderID) == "" {
		return nil, &domain.GatewayError{Provider: Provider, StatusCode: http.StatusBadRequest, Message: "order_id is required"}
	}
	if req.Amount <= 0 {
		return nil, &domain.GatewayError{Provider: Provider, StatusCode: http.StatusBadRequest, Message: "gross_amount must be positive"}
	}
	token := "sandbox-" + req.OrderID
	return &domain.Transaction{
		Token:       token,
		RedirectURL: g.redirectBase + "/" + url.PathEscape(token),
	}, nil
}

func (g *Gateway) ParseNotification(ctx context.Context, payload []byte, headers http.Header) (*domain.Notification, error) {
	n, err := midtrans.ParseNotification(payload)
	if err != nil {
		return nil, err
	}
	n.Provider = Provider
	return n, nil
}

func (g *Gateway) VerifyNotification(ctx context.Context, n *domain.Notification) error {
	if g.serverKey == "" {
		return domain.ErrNotConfigured
	}
	return midtrans.VerifySignature(n, g.serverKey)
}

// SignedNotification builds a notification body the sandbox accepts.
func (g *Gateway) SignedNotification(orderID, transactionStatus, statusCode, grossAmount string) []byte {
	body := map[string]any{
		"order_id":           orderID,
		"transaction_status": transactionStatus,
		"status_code":        statusCode,
		"gross_amount":       grossAmount,
		"transaction_id":     "sandbox-" + orderID,
		"payment_type":       "bank_transfer",
		"fraud_status":       "accept",
		"currency":           "IDR",
		"signature_key":      midtrans.Signature(orderID, statusCode, grossAmount, g.serverKey),
	}
	raw, _ := json.Marshal(body)
	return raw
}
