package gateway

import (
	"testing"

	"github.com/smallbiznis/charity/internal/config"
	"github.com/smallbiznis/charity/internal/gateway/domain"
	"github.com/smallbiznis/charity/internal/gateway/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry("Sandbox", sandbox.New("key"))

	assert.True(t, registry.ProviderExists("sandbox"))
	assert.False(t, registry.ProviderExists("stripe"))

	gw, err := registry.Default()
	require.NoError(t, err)
	assert.Equal(t, sandbox.Provider, gw.Provider())

	_, err = registry.Get("stripe")
	assert.ErrorIs(t, err, domain.ErrProviderNotFound)
	_, err = registry.Get(" ")
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)
}

func TestRegistryFromConfig(t *testing.T) {
	cfg := config.Config{
		Environment: "development",
		Gateway: config.GatewayConfig{
			Provider:          "midtrans",
			MidtransServerKey: "SB-key",
			SandboxServerKey:  "local",
		},
	}
	registry := NewRegistryFromConfig(cfg, zaptest.NewLogger(t))
	assert.True(t, registry.ProviderExists("midtrans"))
	assert.True(t, registry.ProviderExists("sandbox"))

	cfg.Environment = "production"
	cfg.Gateway.MidtransServerKey = ""
	registry = NewRegistryFromConfig(cfg, zaptest.NewLogger(t))
	assert.False(t, registry.ProviderExists("sandbox"))
	_, err := registry.Default()
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}
