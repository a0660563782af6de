package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/charity/internal/campaign"
	campaigndomain "github.com/smallbiznis/charity/internal/campaign/domain"
	"github.com/smallbiznis/charity/internal/config"
	"github.com/smallbiznis/charity/internal/donation"
	donationdomain "github.com/smallbiznis/charity/internal/donation/domain"
	"github.com/smallbiznis/charity/internal/donation/webhook"
	"github.com/smallbiznis/charity/internal/gateway"
	"github.com/smallbiznis/charity/internal/observability"
	obsmiddleware "github.com/smallbiznis/charity/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/charity/internal/observability/metrics"
	obstracing "github.com/smallbiznis/charity/internal/observability/tracing"
	"github.com/smallbiznis/charity/internal/ratelimit"
	"github.com/smallbiznis/charity/internal/receipt"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	ratelimit.Module,
	gateway.Module,
	campaign.Module,
	donation.Module,
	receipt.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.CORSAllowedOrigins))
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, obsCfg, httpMetrics)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", HeaderAdminKey, "X-Request-Id")
	corsCfg.ExposeHeaders = []string{"X-Request-Id", "Retry-After"}
	corsCfg.MaxAge = 12 * time.Hour
	return cors.New(corsCfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	campaignSvc   campaigndomain.Service
	donationSvc   donationdomain.Service
	webhookSvc    *webhook.Service
	receiptSvc    *receipt.Service
	intentLimiter *ratelimit.IntentLimiter
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	CampaignSvc   campaigndomain.Service
	DonationSvc   donationdomain.Service
	WebhookSvc    *webhook.Service
	ReceiptSvc    *receipt.Service
	IntentLimiter *ratelimit.IntentLimiter `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		campaignSvc:   p.CampaignSvc,
		donationSvc:   p.DonationSvc,
		webhookSvc:    p.WebhookSvc,
		receiptSvc:    p.ReceiptSvc,
		intentLimiter: p.IntentLimiter,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/campaigns", s.ListCampaigns)
	api.POST("/campaigns", s.AdminKeyRequired(), s.CreateCampaign)
	api.GET("/campaigns/:id", s.GetCampaign)
	api.GET("/campaigns/:id/donations", s.ListCampaignDonors)

	api.POST("/donations", s.DonationIntentRateLimit(), s.CreateDonationIntent)
	api.GET("/donations/:order_id", s.GetDonation)
	api.GET("/donations/:order_id/receipt", s.GetDonationReceipt)

	api.POST("/payments/webhooks/:provider", s.HandlePaymentWebhook)

	if !s.cfg.IsProduction() {
		api.POST("/test/cleanup", s.TestCleanup)
	}
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.AdminKeyRequired())

	admin.GET("/campaigns/:id/aggregate", s.VerifyCampaignAggregate)
	admin.GET("/donations/:order_id/notifications", s.ListDonationNotifications)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
