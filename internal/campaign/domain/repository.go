package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Campaign, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Campaign, error)
	List(ctx context.Context, db *gorm.DB, filter ListCampaignFilter) ([]*Campaign, error)
	// ApplyDonation atomically adds amount to the aggregate, counts one donor
	// and completes the campaign once the target is reached. It returns the
	// campaign as written.
	ApplyDonation(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, at time.Time) (*Campaign, error)
	SumAppliedDonations(ctx context.Context, db *gorm.DB, id snowflake.ID) (AggregateSum, error)
}

type ListCampaignFilter struct {
	Status Status
	Limit  int
}
