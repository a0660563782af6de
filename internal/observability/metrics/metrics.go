package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes the donation counters.
type Metrics struct {
	donationIntents      metric.Int64Counter
	webhookNotifications metric.Int64Counter
	amountMismatches     metric.Int64Counter
	donationAmount       metric.Int64Counter
	campaignsCompleted   metric.Int64Counter
	rateLimitDenied      metric.Int64Counter
}

type counterDef struct {
	name        string
	description string
	target      *metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New registers the domain counters on provider.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "charity"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	defs := []counterDef{
		{"charity_donation_intents_total", "Donation intents by gateway and outcome.", &m.donationIntents},
		{"charity_webhook_notifications_total", "Reconciled gateway notifications by outcome.", &m.webhookNotifications},
		{"charity_amount_mismatch_total", "Settlements whose gross amount differed from the pledge.", &m.amountMismatches},
		{"charity_donation_amount_total", "Amount applied to campaign aggregates, in the smallest currency unit.", &m.donationAmount},
		{"charity_campaigns_completed_total", "Campaigns that reached their target.", &m.campaignsCompleted},
		{"charity_rate_limit_denied_total", "Requests rejected by the intent limiter.", &m.rateLimitDenied},
	}
	for _, def := range defs {
		counter, err := meter.Int64Counter(def.name, metric.WithDescription(def.description))
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", def.name, err)
		}
		*def.target = counter
	}
	return m, nil
}

func (m *Metrics) add(ctx context.Context, counter metric.Int64Counter, n int64, attrs ...attribute.KeyValue) {
	if m == nil || counter == nil {
		return
	}
	counter.Add(ctx, n, metric.WithAttributes(FilterAttributes(attrs...)...))
}

// RecordDonationIntent counts intent attempts by gateway and outcome.
func (m *Metrics) RecordDonationIntent(ctx context.Context, provider, outcome string) {
	if m == nil {
		return
	}
	m.add(ctx, m.donationIntents, 1, providerAttr(provider), outcomeAttr(outcome))
}

// RecordWebhookNotification counts reconciled notifications by outcome.
func (m *Metrics) RecordWebhookNotification(ctx context.Context, provider, outcome string) {
	if m == nil {
		return
	}
	m.add(ctx, m.webhookNotifications, 1, providerAttr(provider), outcomeAttr(outcome))
}

func (m *Metrics) RecordAmountMismatch(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.add(ctx, m.amountMismatches, 1, providerAttr(provider))
}

// RecordDonationApplied adds an amount that reached a campaign aggregate.
func (m *Metrics) RecordDonationApplied(ctx context.Context, currency string, amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.add(ctx, m.donationAmount, amount, attribute.String("currency", strings.ToUpper(strings.TrimSpace(currency))))
}

func (m *Metrics) RecordCampaignCompleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.add(ctx, m.campaignsCompleted, 1)
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	m.add(ctx, m.rateLimitDenied, 1,
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
}

func providerAttr(provider string) attribute.KeyValue {
	return attribute.String("provider", strings.ToLower(strings.TrimSpace(provider)))
}

func outcomeAttr(outcome string) attribute.KeyValue {
	return attribute.String("outcome", strings.TrimSpace(outcome))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// Order ids, campaign ids and donor fields never become labels.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":    {},
	"status_code": {},
	"provider":    {},
	"outcome":     {},
	"currency":    {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
