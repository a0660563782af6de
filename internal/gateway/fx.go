package gateway

import (
	"github.com/smallbiznis/charity/internal/config"
	"github.com/smallbiznis/charity/internal/gateway/domain"
	"github.com/smallbiznis/charity/internal/gateway/midtrans"
	"github.com/smallbiznis/charity/internal/gateway/sandbox"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("payment.gateway",
	fx.Provide(NewRegistryFromConfig),
)

// NewRegistryFromConfig registers Midtrans when a server key is configured.
// The sandbox gateway is registered outside production.
func NewRegistryFromConfig(cfg config.Config, log *zap.Logger) *Registry {
	gateways := []domain.Gateway{}
	if cfg.Gateway.MidtransServerKey != "" {
		gateways = append(gateways, midtrans.New(midtrans.Config{
			ServerKey:  cfg.Gateway.MidtransServerKey,
			Production: cfg.Gateway.MidtransProduction,
			BaseURL:    cfg.Gateway.MidtransBaseURL,
		}))
	}
	if !cfg.IsProduction() && cfg.Gateway.SandboxServerKey != "" {
		gateways = append(gateways, sandbox.New(cfg.Gateway.SandboxServerKey))
	}

	registry := NewRegistry(cfg.Gateway.Provider, gateways...)
	if _, err := registry.Default(); err != nil && log != nil {
		log.Warn("default payment gateway is not configured",
			zap.String("provider", cfg.Gateway.Provider),
		)
	}
	return registry
}
