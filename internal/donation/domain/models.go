package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const AnonymousName = "Anonymous"

// Donation is a donor pledge tracked from intent to gateway finality.
// Amount never changes after creation. PaidAt is set only when the
// amount reached the campaign aggregate.
type Donation struct {
	ID                   snowflake.ID   `gorm:"primaryKey" json:"id"`
	OrderID              string         `gorm:"not null;uniqueIndex;size:64" json:"order_id"`
	CampaignID           snowflake.ID   `gorm:"not null;index" json:"campaign_id"`
	UserID               *string        `json:"user_id,omitempty"`
	DonorEmail           string         `gorm:"not null" json:"donor_email"`
	DonorName            string         `gorm:"not null" json:"donor_name"`
	IsAnonymous          bool           `gorm:"not null;default:false" json:"is_anonymous"`
	Amount               int64          `gorm:"not null" json:"amount"`
	Currency             string         `gorm:"not null;default:'IDR'" json:"currency"`
	Message              string         `gorm:"type:text" json:"message,omitempty"`
	Provider             string         `gorm:"not null" json:"provider"`
	PaymentToken         string         `json:"payment_token,omitempty"`
	RedirectURL          string         `json:"redirect_url,omitempty"`
	PaymentType          string         `json:"payment_type,omitempty"`
	Issuer               string         `json:"issuer,omitempty"`
	Bank                 string         `json:"bank,omitempty"`
	VANumbers            datatypes.JSON `gorm:"column:va_numbers" json:"va_numbers,omitempty"`
	GatewayTransactionID string         `json:"gateway_transaction_id,omitempty"`
	FraudStatus          string         `json:"fraud_status,omitempty"`
	Status               Status         `gorm:"not null;default:'pending';index" json:"status"`
	PaidAt               *time.Time     `json:"paid_at,omitempty"`
	CreatedAt            time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
}

func (Donation) TableName() string {
	return "donations"
}

// DisplayName is the name shown on the donor wall and receipts.
func (d Donation) DisplayName() string {
	if d.IsAnonymous || d.DonorName == "" {
		return AnonymousName
	}
	return d.DonorName
}

type Outcome string

const (
	OutcomeApplied        Outcome = "applied"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeAmountMismatch Outcome = "amount_mismatch"
	OutcomeStatusUpdated  Outcome = "status_updated"
	OutcomeStale          Outcome = "stale"
)

// PaymentNotification is the audit row for a gateway callback that went
// past the idempotency guard.
type PaymentNotification struct {
	ID                string         `gorm:"primaryKey;size:26" json:"id"`
	Provider          string         `gorm:"not null" json:"provider"`
	OrderID           string         `gorm:"not null;index;size:64" json:"order_id"`
	TransactionID     string         `json:"transaction_id,omitempty"`
	TransactionStatus string         `gorm:"not null" json:"transaction_status"`
	FraudStatus       string         `json:"fraud_status,omitempty"`
	GrossAmount       string         `json:"gross_amount"`
	Outcome           Outcome        `gorm:"not null" json:"outcome"`
	Payload           datatypes.JSON `json:"payload,omitempty"`
	ReceivedAt        time.Time      `gorm:"not null" json:"received_at"`
}

func (PaymentNotification) TableName() string {
	return "payment_notifications"
}

// StatusUpdate is everything a notification may write to a donation.
type StatusUpdate struct {
	OrderID              string
	Status               Status
	PaymentType          string
	Issuer               string
	Bank                 string
	VANumbers            datatypes.JSON
	GatewayTransactionID string
	FraudStatus          string
	PaidAt               *time.Time
	UpdatedAt            time.Time
}

// PublicDonation is a donor wall entry. Emails never leave the service.
type PublicDonation struct {
	Name      string    `json:"name"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
