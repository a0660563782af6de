package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/smallbiznis/charity/internal/donation/domain"
	"github.com/smallbiznis/charity/internal/gateway"
	gatewaydomain "github.com/smallbiznis/charity/internal/gateway/domain"
	obsmetrics "github.com/smallbiznis/charity/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Donations  domain.Service
	Gateways   *gateway.Registry
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	donations  domain.Service
	gateways   *gateway.Registry
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) *Service {
	return &Service{
		log:        p.Log.Named("payment.webhook"),
		donations:  p.Donations,
		gateways:   p.Gateways,
		obsMetrics: p.ObsMetrics,
	}
}

// IngestWebhook authenticates a raw gateway callback and hands it to the
// reconciler. Field presence is checked before the signature so a
// malformed callback is reported as such.
func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (domain.ReconcileResult, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return domain.ReconcileResult{}, gatewaydomain.ErrInvalidProvider
	}
	gw, err := s.gateways.Get(provider)
	if err != nil {
		return domain.ReconcileResult{}, err
	}
	if !json.Valid(payload) {
		return domain.ReconcileResult{}, gatewaydomain.ErrInvalidPayload
	}

	n, err := gw.ParseNotification(ctx, payload, headers)
	if err != nil {
		return domain.ReconcileResult{}, err
	}
	if n.OrderID == "" {
		return domain.ReconcileResult{}, domain.ErrMissingOrderID
	}
	if n.TransactionStatus == "" {
		return domain.ReconcileResult{}, domain.ErrMissingStatus
	}

	if err := gw.VerifyNotification(ctx, n); err != nil {
		if errors.Is(err, gatewaydomain.ErrInvalidSignature) {
			s.log.Warn("payment webhook signature rejected",
				zap.String("provider", provider),
				zap.String("order_id", n.OrderID),
			)
			s.obsMetrics.RecordWebhookNotification(ctx, provider, "invalid_signature")
		}
		return domain.ReconcileResult{}, err
	}

	n.Provider = provider
	if n.Payload == nil {
		n.Payload = payload
	}
	return s.donations.Reconcile(ctx, n)
}
