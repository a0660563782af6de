package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	gatewaydomain "github.com/smallbiznis/charity/internal/gateway/domain"
)

type CreateIntentRequest struct {
	CampaignID  string
	Email       string
	Name        string
	Amount      int64
	Message     string
	IsAnonymous bool
	UserID      string
}

type IntentResult struct {
	Transaction gatewaydomain.Transaction `json:"transaction"`
	DonorID     snowflake.ID              `json:"donorId"`
	OrderID     string                    `json:"order_id"`
}

type ReconcileResult struct {
	Donation          Donation
	Outcome           Outcome
	CampaignCompleted bool
}

type Service interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (IntentResult, error)
	Reconcile(ctx context.Context, n *gatewaydomain.Notification) (ReconcileResult, error)
	GetByOrderID(ctx context.Context, orderID string) (Donation, error)
	ListDonors(ctx context.Context, campaignID snowflake.ID, limit int) ([]PublicDonation, error)
	ListNotifications(ctx context.Context, orderID string) ([]PaymentNotification, error)
}

var (
	ErrInvalidCampaign    = errors.New("invalid_campaign_id")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrAmountBelowMinimum = errors.New("amount_below_minimum")
	ErrInvalidMessage     = errors.New("invalid_message")
	ErrInvalidOrderID     = errors.New("invalid_order_id")
	ErrMissingOrderID     = errors.New("missing_order_id")
	ErrMissingStatus      = errors.New("missing_transaction_status")
	ErrInvalidStatus      = errors.New("invalid_transaction_status")
	ErrIntentInProgress   = errors.New("intent_in_progress")
	ErrNotFound           = errors.New("donation_not_found")
	ErrNotPaid            = errors.New("donation_not_paid")
)
