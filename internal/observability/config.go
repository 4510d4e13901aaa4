package observability

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/gsttally/internal/config"
	"github.com/smallbiznis/gsttally/internal/observability/logger"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds observability configuration derived from environment variables.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64

	// DBLogLevel is silent, error, warn or info. Empty follows Debug().
	DBLogLevel         string
	DBSlowQuery        time.Duration
	DBLogRecordMissing bool
}

// LoadConfig reads observability settings, falling back to the application config.
func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "gsttally"
	}
	environment := getenv("DEPLOYMENT_ENV", cfg.Environment)
	version := getenv("SERVICE_VERSION", cfg.AppVersion)
	logLevel := strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info")))
	logFormat := strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json")))
	otlpEndpoint := getenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
	otlpProtocol := strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")))
	if tracesProtocol := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL")); tracesProtocol != "" {
		otlpProtocol = strings.ToLower(tracesProtocol)
	}

	samplingRatio := getenvFloat("OTEL_SAMPLING_RATIO", 0.1)
	enabled := getenvBool("OTEL_ENABLED", false)
	slowQuery := time.Duration(getenvInt("DB_SLOW_QUERY_MS", 200)) * time.Millisecond

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(environment),
		Version:              strings.TrimSpace(version),
		LogLevel:             logLevel,
		LogFormat:            logFormat,
		OtelEnabled:          enabled,
		OtelExporterEndpoint: strings.TrimSpace(otlpEndpoint),
		OtelExporterProtocol: otlpProtocol,
		OtelSamplingRatio:    samplingRatio,
		DBLogLevel:           strings.ToLower(strings.TrimSpace(os.Getenv("DB_LOG_LEVEL"))),
		DBSlowQuery:          slowQuery,
		DBLogRecordMissing:   getenvBool("DB_LOG_RECORD_NOT_FOUND", false),
	}
}

// GormLogger derives query logging for the master-data store. Debug
// environments log every statement unless DB_LOG_LEVEL says otherwise.
func (c Config) GormLogger() logger.GormLoggerConfig {
	out := logger.DefaultGormLoggerConfig()
	if c.Debug() {
		out.Level = gormlogger.Info
	}
	out.Level = logger.ParseGormLevel(c.DBLogLevel, out.Level)
	if c.DBSlowQuery >= 0 {
		out.SlowThreshold = c.DBSlowQuery
	}
	out.IgnoreRecordNotFound = !c.DBLogRecordMissing
	return out
}

func (c Config) Debug() bool {
	level := strings.ToLower(strings.TrimSpace(c.LogLevel))
	if level == "debug" {
		return true
	}
	return isDevEnv(c.Environment)
}

func isDevEnv(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	switch env {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getenv(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
