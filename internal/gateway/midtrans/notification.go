package midtrans

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/charity/internal/gateway/domain"
)

// Midtrans reports transaction_time in Asia/Jakarta without an offset.
var jakarta = time.FixedZone("WIB", 7*60*60)

type notificationPayload struct {
	TransactionTime   string            `json:"transaction_time"`
	TransactionStatus string            `json:"transaction_status"`
	TransactionID     string            `json:"transaction_id"`
	StatusCode        literal           `json:"status_code"`
	SignatureKey      string            `json:"signature_key"`
	PaymentType       string            `json:"payment_type"`
	OrderID           string            `json:"order_id"`
	GrossAmount       literal           `json:"gross_amount"`
	FraudStatus       string            `json:"fraud_status"`
	Currency          string            `json:"currency"`
	Issuer            string            `json:"issuer"`
	Acquirer          string            `json:"acquirer"`
	Bank              string            `json:"bank"`
	VANumbers         []domain.VANumber `json:"va_numbers"`
	PermataVANumber   string            `json:"permata_va_number"`
	BillerCode        string            `json:"biller_code"`
	BillKey           string            `json:"bill_key"`
}

// literal accepts a JSON string or number and keeps the text as sent, so
// 200000 and "200000.00" both reach the signature check unchanged.
type literal string

func (l *literal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = literal(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*l = literal(n.String())
	return nil
}

func (g *Gateway) ParseNotification(ctx context.Context, payload []byte, headers http.Header) (*domain.Notification, error) {
	n, err := ParseNotification(payload)
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
	return VerifySignature(n, g.serverKey)
}

// ParseNotification decodes a Midtrans HTTP notification body.
func ParseNotification(payload []byte) (*domain.Notification, error) {
	var body notificationPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	n := &domain.Notification{
		OrderID:           strings.TrimSpace(body.OrderID),
		TransactionID:     strings.TrimSpace(body.TransactionID),
		TransactionStatus: strings.ToLower(strings.TrimSpace(body.TransactionStatus)),
		FraudStatus:       strings.ToLower(strings.TrimSpace(body.FraudStatus)),
		StatusCode:        strings.TrimSpace(string(body.StatusCode)),
		GrossAmount:       strings.TrimSpace(string(body.GrossAmount)),
		Currency:          strings.ToUpper(strings.TrimSpace(body.Currency)),
		PaymentType:       strings.TrimSpace(body.PaymentType),
		Issuer:            firstNonEmpty(body.Issuer, body.Acquirer),
		Bank:              strings.TrimSpace(body.Bank),
		VANumbers:         body.VANumbers,
		SignatureKey:      strings.TrimSpace(body.SignatureKey),
		Payload:           payload,
	}

	switch {
	case body.PermataVANumber != "":
		n.VANumbers = append(n.VANumbers, domain.VANumber{Bank: "permata", VANumber: body.PermataVANumber})
	case body.BillKey != "":
		n.VANumbers = append(n.VANumbers, domain.VANumber{Bank: "mandiri", VANumber: body.BillerCode + body.BillKey})
	}
	if n.Bank == "" && len(n.VANumbers) > 0 {
		n.Bank = n.VANumbers[0].Bank
	}

	if ts := strings.TrimSpace(body.TransactionTime); ts != "" {
		if parsed, err := time.ParseInLocation("2006-01-02 15:04:05", ts, jakarta); err == nil {
			utc := parsed.UTC()
			n.TransactionTime = &utc
		}
	}

	return n, nil
}

// Signature computes SHA512(order_id + status_code + gross_amount + server_key).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func VerifySignature(n *domain.Notification, serverKey string) error {
	if n == nil || n.SignatureKey == "" || serverKey == "" {
		return domain.ErrInvalidSignature
	}
	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	if subtle.ConstantTimeCompare([]byte(strings.ToLower(n.SignatureKey)), []byte(expected)) != 1 {
		return domain.ErrInvalidSignature
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
