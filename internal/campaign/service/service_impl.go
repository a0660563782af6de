package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/charity/internal/campaign/domain"
	"github.com/smallbiznis/charity/internal/clock"
	"github.com/smallbiznis/charity/internal/config"
	"github.com/smallbiznis/charity/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	slugSuffixLength = 6
	maxSlugLength    = 80
	maxInsertTries   = 3
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Donation *config.DonationConfigHolder `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	donation *config.DonationConfigHolder
}

func New(p Params) domain.Service {
	c := p.Clock
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("campaign.service"),
		genID:    p.GenID,
		clock:    c,
		repo:     p.Repo,
		donation: p.Donation,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCampaignRequest) (domain.Campaign, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Campaign{}, domain.ErrInvalidTitle
	}
	if req.TargetAmount <= 0 {
		return domain.Campaign{}, domain.ErrInvalidTargetAmount
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.donation.Get().Currency
	}
	if len(currency) != 3 {
		return domain.Campaign{}, domain.ErrInvalidCurrency
	}

	now := s.clock.Now()
	var deadline *time.Time
	if req.Deadline != nil {
		d := req.Deadline.UTC()
		if !d.After(now) {
			return domain.Campaign{}, domain.ErrInvalidDeadline
		}
		deadline = &d
	}

	campaign := domain.Campaign{
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		TargetAmount: req.TargetAmount,
		Currency:     currency,
		Status:       domain.StatusOngoing,
		Deadline:     deadline,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var err error
	for attempt := 0; attempt < maxInsertTries; attempt++ {
		campaign.ID = s.genID.Generate()
		campaign.Slug = buildSlug(title, campaign.ID)
		err = s.repo.Insert(ctx, s.db, &campaign)
		if err == nil {
			break
		}
		if !db.IsDuplicateKeyErr(err) {
			return domain.Campaign{}, err
		}
	}
	if err != nil {
		return domain.Campaign{}, err
	}

	s.log.Info("campaign created",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("slug", campaign.Slug),
		zap.Int64("target_amount", campaign.TargetAmount),
	)
	return campaign, nil
}

func (s *Service) Get(ctx context.Context, idOrSlug string) (domain.Campaign, error) {
	value := strings.TrimSpace(idOrSlug)
	if value == "" {
		return domain.Campaign{}, domain.ErrInvalidID
	}

	var (
		item *domain.Campaign
		err  error
	)
	if id, parseErr := snowflake.ParseString(value); parseErr == nil && id > 0 {
		item, err = s.repo.FindByID(ctx, s.db, id)
	} else {
		item, err = s.repo.FindBySlug(ctx, s.db, strings.ToLower(value))
	}
	if err != nil {
		return domain.Campaign{}, err
	}
	if item == nil {
		return domain.Campaign{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCampaignRequest) ([]domain.Campaign, error) {
	status := domain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := s.repo.List(ctx, s.db, domain.ListCampaignFilter{Status: status, Limit: limit})
	if err != nil {
		return nil, err
	}

	campaigns := make([]domain.Campaign, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		campaigns = append(campaigns, *item)
	}
	return campaigns, nil
}

// VerifyAggregate is read-only. Drift is reported, never repaired.
func (s *Service) VerifyAggregate(ctx context.Context, id string) (domain.AggregateReport, error) {
	campaignID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || campaignID == 0 {
		return domain.AggregateReport{}, domain.ErrInvalidID
	}

	campaign, err := s.repo.FindByID(ctx, s.db, campaignID)
	if err != nil {
		return domain.AggregateReport{}, err
	}
	if campaign == nil {
		return domain.AggregateReport{}, domain.ErrNotFound
	}

	sum, err := s.repo.SumAppliedDonations(ctx, s.db, campaignID)
	if err != nil {
		return domain.AggregateReport{}, err
	}

	report := domain.AggregateReport{
		CampaignID:         campaign.ID.String(),
		StoredCollected:    campaign.CollectedAmount,
		StoredDonorCount:   campaign.DonorCount,
		ComputedCollected:  sum.CollectedAmount,
		ComputedDonorCount: sum.DonorCount,
		CollectedDrift:     campaign.CollectedAmount - sum.CollectedAmount,
		DonorCountDrift:    campaign.DonorCount - sum.DonorCount,
	}
	report.Consistent = report.CollectedDrift == 0 && report.DonorCountDrift == 0
	if !report.Consistent {
		s.log.Warn("campaign aggregate drift",
			zap.String("campaign_id", report.CampaignID),
			zap.Int64("collected_drift", report.CollectedDrift),
			zap.Int64("donor_count_drift", report.DonorCountDrift),
		)
	}
	return report, nil
}

func buildSlug(title string, id snowflake.ID) string {
	base := slug.Make(title)
	if len(base) > maxSlugLength {
		base = strings.Trim(base[:maxSlugLength], "-")
	}
	suffix := id.Base36()
	if len(suffix) > slugSuffixLength {
		suffix = suffix[len(suffix)-slugSuffixLength:]
	}
	if base == "" {
		return "campaign-" + suffix
	}
	return base + "-" + suffix
}
