package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	campaigndomain "github.com/smallbiznis/charity/internal/campaign/domain"
	"github.com/smallbiznis/charity/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	demoSlug        = "demo-clean-water"
	demoTitle       = "Clean Water for Demak"
	demoDescription = "Demo campaign for local development with the sandbox gateway."
	demoTarget      = 500000
)

var Module = fx.Module("seed",
	fx.Invoke(func(lc fx.Lifecycle, db *gorm.DB, cfg config.Config, policy *config.DonationConfigHolder, node *snowflake.Node, log *zap.Logger) {
		if !cfg.SeedDemoCampaign || cfg.IsProduction() {
			return
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				created, err := EnsureDemoCampaign(ctx, db, node, policy.Get().Currency)
				if err != nil {
					return err
				}
				if created {
					log.Info("demo campaign seeded", zap.String("slug", demoSlug))
				}
				return nil
			},
		})
	}),
)

// EnsureDemoCampaign seeds one ongoing campaign so a fresh dev database can
// take sandbox donations. It reports whether a row was inserted.
func EnsureDemoCampaign(ctx context.Context, db *gorm.DB, node *snowflake.Node, currency string) (bool, error) {
	if db == nil {
		return false, errors.New("seed database handle is required")
	}
	if node == nil {
		return false, errors.New("seed id generator is required")
	}
	if currency == "" {
		currency = config.DefaultDonationConfig().Currency
	}

	created := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing campaigndomain.Campaign
		err := tx.Where("slug = ?", demoSlug).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		campaign := campaigndomain.Campaign{
			ID:           node.Generate(),
			Slug:         demoSlug,
			Title:        demoTitle,
			Description:  demoDescription,
			TargetAmount: demoTarget,
			Currency:     currency,
			Status:       campaigndomain.StatusOngoing,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&campaign).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}
