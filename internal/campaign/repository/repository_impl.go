package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/charity/internal/campaign/domain"
	"gorm.io/gorm"
)

const campaignColumns = `id, slug, title, description, target_amount, collected_amount, donor_count,
	currency, status, deadline, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO campaigns (id, slug, title, description, target_amount, collected_amount, donor_count,
			currency, status, deadline, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		campaign.ID,
		campaign.Slug,
		campaign.Title,
		campaign.Description,
		campaign.TargetAmount,
		campaign.CollectedAmount,
		campaign.DonorCount,
		campaign.Currency,
		campaign.Status,
		campaign.Deadline,
		campaign.CreatedAt,
		campaign.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).Raw(
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`,
		id,
	).Scan(&campaign).Error
	if err != nil {
		return nil, err
	}
	if campaign.ID == 0 {
		return nil, nil
	}
	return &campaign, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).Raw(
		`SELECT `+campaignColumns+` FROM campaigns WHERE slug = ?`,
		slug,
	).Scan(&campaign).Error
	if err != nil {
		return nil, err
	}
	if campaign.ID == 0 {
		return nil, nil
	}
	return &campaign, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCampaignFilter) ([]*domain.Campaign, error) {
	var campaigns []*domain.Campaign
	stmt := db.WithContext(ctx).Model(&domain.Campaign{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}
	if err := stmt.Order("created_at desc, id desc").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// ApplyDonation increments in a single statement so concurrent donations to
// one campaign never lose updates. status is assigned first: PostgreSQL and
// SQLite evaluate every SET expression against the old row, MySQL evaluates
// left to right, and both then see the pre-increment total.
func (r *repo) ApplyDonation(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, at time.Time) (*domain.Campaign, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE campaigns SET
			status = CASE WHEN collected_amount + ? >= target_amount THEN ? ELSE status END,
			collected_amount = collected_amount + ?,
			donor_count = donor_count + 1,
			updated_at = ?
		 WHERE id = ?`,
		amount,
		domain.StatusCompleted,
		amount,
		at,
		id,
	)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, db, id)
}

func (r *repo) SumAppliedDonations(ctx context.Context, db *gorm.DB, id snowflake.ID) (domain.AggregateSum, error) {
	var sum domain.AggregateSum
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) AS collected_amount, COUNT(*) AS donor_count
		 FROM donations
		 WHERE campaign_id = ? AND status IN ('settlement', 'capture') AND paid_at IS NOT NULL`,
		id,
	).Scan(&sum).Error
	if err != nil {
		return domain.AggregateSum{}, err
	}
	return sum, nil
}
