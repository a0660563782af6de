package domain

import (
	"context"
	"errors"
	"time"
)

type CreateCampaignRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	TargetAmount int64      `json:"target_amount"`
	Currency     string     `json:"currency"`
	Deadline     *time.Time `json:"deadline"`
}

type ListCampaignRequest struct {
	Status string
	Limit  int
}

// AggregateReport compares the stored aggregate with the one recomputed
// from applied donations.
type AggregateReport struct {
	CampaignID         string `json:"campaign_id"`
	StoredCollected    int64  `json:"stored_collected_amount"`
	StoredDonorCount   int64  `json:"stored_donor_count"`
	ComputedCollected  int64  `json:"computed_collected_amount"`
	ComputedDonorCount int64  `json:"computed_donor_count"`
	CollectedDrift     int64  `json:"collected_drift"`
	DonorCountDrift    int64  `json:"donor_count_drift"`
	Consistent         bool   `json:"consistent"`
}

type Service interface {
	Create(ctx context.Context, req CreateCampaignRequest) (Campaign, error)
	// Get resolves a campaign by snowflake id or by slug.
	Get(ctx context.Context, idOrSlug string) (Campaign, error)
	List(ctx context.Context, req ListCampaignRequest) ([]Campaign, error)
	VerifyAggregate(ctx context.Context, id string) (AggregateReport, error)
}

var (
	ErrInvalidID           = errors.New("invalid_campaign_id")
	ErrInvalidTitle        = errors.New("invalid_title")
	ErrInvalidTargetAmount = errors.New("invalid_target_amount")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidStatus       = errors.New("invalid_campaign_status")
	ErrInvalidDeadline     = errors.New("invalid_deadline")
	ErrNotFound            = errors.New("campaign_not_found")
)
