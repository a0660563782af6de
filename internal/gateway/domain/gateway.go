package domain

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Gateway is a payment provider able to open a hosted payment session and
// to authenticate its asynchronous status notifications.
type Gateway interface {
	Provider() string
	CreateTransaction(ctx context.Context, req TransactionRequest) (*Transaction, error)
	ParseNotification(ctx context.Context, payload []byte, headers http.Header) (*Notification, error)
	VerifyNotification(ctx context.Context, n *Notification) error
}

type Customer struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

type TransactionRequest struct {
	OrderID  string
	Amount   int64
	Currency string
	ItemID   string
	ItemName string
	Customer Customer
}

type Transaction struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type VANumber struct {
	Bank     string `json:"bank"`
	VANumber string `json:"va_number"`
}

// Notification is a provider callback reduced to the fields reconciliation
// needs. GrossAmount is kept as the provider sent it, e.g. "200000.00".
type Notification struct {
	Provider          string
	OrderID           string
	TransactionID     string
	TransactionStatus string
	FraudStatus       string
	StatusCode        string
	GrossAmount       string
	Currency          string
	PaymentType       string
	Issuer            string
	Bank              string
	VANumbers         []VANumber
	SignatureKey      string
	TransactionTime   *time.Time
	Payload           []byte
}

// GatewayError carries the provider's rejection message verbatim.
type GatewayError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return e.Provider + ": transaction rejected"
	}
	return e.Message
}

var (
	ErrInvalidProvider  = errors.New("invalid_provider")
	ErrProviderNotFound = errors.New("provider_not_found")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrNotConfigured    = errors.New("gateway_not_configured")
)
