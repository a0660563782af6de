package service

import (
	"github.com/bwmarrin/snowflake"
	campaigndomain "github.com/smallbiznis/charity/internal/campaign/domain"
	"github.com/smallbiznis/charity/internal/clock"
	"github.com/smallbiznis/charity/internal/config"
	"github.com/smallbiznis/charity/internal/donation/domain"
	"github.com/smallbiznis/charity/internal/gateway"
	obsmetrics "github.com/smallbiznis/charity/internal/observability/metrics"
	"github.com/smallbiznis/charity/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultDonorLimit = 50
	maxDonorLimit     = 200
	maxNameLength     = 100
	maxMessageLength  = 500
)

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	Repo             domain.Repository
	CampaignRepo     campaigndomain.Repository
	Gateways         *gateway.Registry
	Policy           *config.DonationConfigHolder `optional:"true"`
	Locker           *ratelimit.Locker            `optional:"true"`
	ObsMetrics       *obsmetrics.Metrics          `optional:"true"`
	ReconcileMetrics *obsmetrics.ReconcileMetrics `optional:"true"`
}

type Service struct {
	db               *gorm.DB
	log              *zap.Logger
	genID            *snowflake.Node
	clock            clock.Clock
	repo             domain.Repository
	campaignRepo     campaigndomain.Repository
	gateways         *gateway.Registry
	policy           *config.DonationConfigHolder
	locker           *ratelimit.Locker
	obsMetrics       *obsmetrics.Metrics
	reconcileMetrics *obsmetrics.ReconcileMetrics
}

func New(p Params) domain.Service {
	c := p.Clock
	if c == nil {
		c = clock.SystemClock{}
	}
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("donation.service"),
		genID:            p.GenID,
		clock:            c,
		repo:             p.Repo,
		campaignRepo:     p.CampaignRepo,
		gateways:         p.Gateways,
		policy:           p.Policy,
		locker:           p.Locker,
		obsMetrics:       p.ObsMetrics,
		reconcileMetrics: p.ReconcileMetrics,
	}
}
