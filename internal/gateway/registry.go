package gateway

import (
	"strings"

	"github.com/smallbiznis/charity/internal/gateway/domain"
)

// Registry resolves gateways by provider name. The default gateway opens
// new donation intents; every registered gateway may deliver webhooks.
type Registry struct {
	gateways        map[string]domain.Gateway
	defaultProvider string
}

func NewRegistry(defaultProvider string, gateways ...domain.Gateway) *Registry {
	registry := &Registry{
		gateways:        map[string]domain.Gateway{},
		defaultProvider: normalize(defaultProvider),
	}
	for _, gw := range gateways {
		if gw == nil {
			continue
		}
		provider := normalize(gw.Provider())
		if provider == "" {
			continue
		}
		registry.gateways[provider] = gw
	}
	return registry
}

func (r *Registry) ProviderExists(provider string) bool {
	if r == nil {
		return false
	}
	_, ok := r.gateways[normalize(provider)]
	return ok
}

func (r *Registry) Get(provider string) (domain.Gateway, error) {
	if r == nil {
		return nil, domain.ErrProviderNotFound
	}
	provider = normalize(provider)
	if provider == "" {
		return nil, domain.ErrInvalidProvider
	}
	gw, ok := r.gateways[provider]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return gw, nil
}

func (r *Registry) Default() (domain.Gateway, error) {
	if r == nil {
		return nil, domain.ErrNotConfigured
	}
	gw, err := r.Get(r.defaultProvider)
	if err != nil {
		return nil, domain.ErrNotConfigured
	}
	return gw, nil
}

func normalize(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
