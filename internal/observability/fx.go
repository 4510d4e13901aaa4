package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/gsttally/internal/config"
	"github.com/smallbiznis/gsttally/internal/observability/logger"
	"github.com/smallbiznis/gsttally/internal/observability/metrics"
	"github.com/smallbiznis/gsttally/internal/observability/tracing"
	"github.com/smallbiznis/gsttally/pkg/telemetry"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		provideLoggerConfig,
		logger.New,
		provideGormLoggerConfig,
		provideTracingConfig,
		tracing.NewProvider,
		provideMetricsConfig,
		metrics.NewProvider,
		metrics.New,
		providePrometheusMetrics,
	),
	fx.Invoke(ensureTracingProvider),
	fx.Invoke(observeSettingsReloads),
)

func providePrometheusMetrics() *telemetry.Metrics {
	return telemetry.NewMetrics(prometheus.DefaultRegisterer)
}

type settingsReloadParams struct {
	fx.In

	Settings *config.GSTSettingsHolder `optional:"true"`
	Metrics  *telemetry.Metrics
}

func observeSettingsReloads(p settingsReloadParams) {
	p.Settings.OnReload(p.Metrics.ObserveSettingsReload)
}

func ensureTracingProvider(_ *sdktrace.TracerProvider) {}

func provideLoggerConfig(cfg Config) logger.Config {
	return logger.Config{
		ServiceName:         cfg.ServiceName,
		Environment:         cfg.Environment,
		Version:             cfg.Version,
		Level:               cfg.LogLevel,
		Format:              cfg.LogFormat,
		Debug:               cfg.Debug(),
		IncludeCaller:       true,
		IncludeStackOnError: cfg.Debug(),
	}
}

func provideGormLoggerConfig(cfg Config) *logger.GormLoggerConfig {
	out := cfg.GormLogger()
	return &out
}

func provideTracingConfig(cfg Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.OtelEnabled,
		ServiceName:      cfg.ServiceName,
		ServiceVersion:   cfg.Version,
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		SamplingRatio:    cfg.OtelSamplingRatio,
	}
}

func provideMetricsConfig(cfg Config) metrics.Config {
	return metrics.Config{
		Enabled:          cfg.OtelEnabled,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		ServiceName:      cfg.ServiceName,
		Environment:      cfg.Environment,
	}
}
