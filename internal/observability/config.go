package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/resaleops/stockroom/internal/config"
)

// Config is the observability tuning derived from the app config plus a few
// environment overrides. Otel export is off by default; the prometheus
// /metrics endpoint and structured logging are always on.
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
}

func LoadConfig(cfg config.Config) Config {
	out := Config{
		ServiceName:          strings.TrimSpace(cfg.AppName),
		Environment:          env("DEPLOYMENT_ENV", cfg.Environment),
		Version:              env("SERVICE_VERSION", cfg.AppVersion),
		LogLevel:             strings.ToLower(env("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(env("LOG_FORMAT", "json")),
		OtelExporterEndpoint: env("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint),
		OtelExporterProtocol: strings.ToLower(env("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
		OtelSamplingRatio:    0.1,
	}
	if out.ServiceName == "" {
		out.ServiceName = "stockroom"
	}
	switch strings.ToLower(os.Getenv("OTEL_ENABLED")) {
	case "1", "true", "yes", "on":
		out.OtelEnabled = true
	}
	if raw := strings.TrimSpace(os.Getenv("OTEL_SAMPLING_RATIO")); raw != "" {
		if ratio, err := strconv.ParseFloat(raw, 64); err == nil {
			out.OtelSamplingRatio = ratio
		}
	}
	return out
}

// Debug reports whether verbose diagnostics are wanted: an explicit debug log
// level, or a development-style environment.
func (c Config) Debug() bool {
	if strings.ToLower(strings.TrimSpace(c.LogLevel)) == "debug" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func env(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return strings.TrimSpace(def)
}
