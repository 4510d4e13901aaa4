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

// Metrics exposes application-level instruments.
type Metrics struct {
	documentsValidated metric.Int64Counter
	linesComputed      metric.Int64Counter
	rateFallbacks      metric.Int64Counter
	complianceSkipped  metric.Int64Counter
	rateLimitAllowed   metric.Int64Counter
	rateLimitDenied    metric.Int64Counter
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

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "gsttally"
	}
	meter := provider.Meter(name)

	documentsValidated, err := meter.Int64Counter("gsttally_documents_validated_total")
	if err != nil {
		return nil, err
	}
	linesComputed, err := meter.Int64Counter("gsttally_lines_computed_total")
	if err != nil {
		return nil, err
	}
	rateFallbacks, err := meter.Int64Counter("gsttally_rate_fallbacks_total")
	if err != nil {
		return nil, err
	}
	complianceSkipped, err := meter.Int64Counter("gsttally_compliance_skipped_total")
	if err != nil {
		return nil, err
	}
	rateLimitAllowed, err := meter.Int64Counter("gsttally_rate_limit_allowed_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("gsttally_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		documentsValidated: documentsValidated,
		linesComputed:      linesComputed,
		rateFallbacks:      rateFallbacks,
		complianceSkipped:  complianceSkipped,
		rateLimitAllowed:   rateLimitAllowed,
		rateLimitDenied:    rateLimitDenied,
	}, nil
}

// RecordDocumentValidated counts documents processed by the validate hook, by path.
func (m *Metrics) RecordDocumentValidated(ctx context.Context, path string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("path", strings.TrimSpace(path)))
	m.documentsValidated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordLineComputed counts lines taxed under a jurisdiction.
func (m *Metrics) RecordLineComputed(ctx context.Context, jurisdiction string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("jurisdiction", strings.TrimSpace(jurisdiction)))
	m.linesComputed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateFallback counts lines taxed at zero because no usable rate resolved.
func (m *Metrics) RecordRateFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.rateFallbacks.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordComplianceSkipped counts compliance entry points suppressed for a document.
func (m *Metrics) RecordComplianceSkipped(ctx context.Context, entryPoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("entry_point", strings.TrimSpace(entryPoint)))
	m.complianceSkipped.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, company, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("company", strings.TrimSpace(company)),
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
	)
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, company, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("company", strings.TrimSpace(company)),
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
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

var allowedLabelKeys = map[attribute.Key]struct{}{
	"company":      {},
	"endpoint":     {},
	"status_code":  {},
	"path":         {},
	"jurisdiction": {},
	"entry_point":  {},
	"reason":       {},
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
