package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/ohrlando/stream-list/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name reported in the resource.
	ServiceName string
	// ServiceVersion is the version reported in the resource.
	ServiceVersion string
	// Environment is the deployment environment (development, staging, production).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure disables TLS towards the collector.
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for local development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP HTTP.
// The caller must Shutdown the returned provider.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded for pipeline evaluations.
type Metrics struct {
	evaluationTotal    metric.Int64Counter
	evaluationDuration metric.Float64Histogram
	elementsScanned    metric.Int64Counter
	elementsEmitted    metric.Int64Counter
	errorTotal         metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	evaluationTotal, err := meter.Int64Counter("pipeline.evaluation.total",
		metric.WithDescription("Total number of terminal evaluations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.evaluation.total counter: %w", err)
	}

	evaluationDuration, err := meter.Float64Histogram("pipeline.evaluation.duration",
		metric.WithDescription("Duration of terminal evaluations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.evaluation.duration histogram: %w", err)
	}

	elementsScanned, err := meter.Int64Counter("pipeline.elements.scanned",
		metric.WithDescription("Source elements visited by the evaluation loop"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.elements.scanned counter: %w", err)
	}

	elementsEmitted, err := meter.Int64Counter("pipeline.elements.emitted",
		metric.WithDescription("Elements that survived every stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.elements.emitted counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by type and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		evaluationTotal:    evaluationTotal,
		evaluationDuration: evaluationDuration,
		elementsScanned:    elementsScanned,
		elementsEmitted:    elementsEmitted,
		errorTotal:         errorTotal,
	}, nil
}

// RecordEvaluation records one completed terminal evaluation.
func (m *Metrics) RecordEvaluation(ctx context.Context, terminal, status string, scanned, emitted int, duration time.Duration) {
	byTerminal := metric.WithAttributes(attribute.String("terminal", terminal))
	m.evaluationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("terminal", terminal),
		attribute.String(AttrStatus, status),
	))
	m.evaluationDuration.Record(ctx, duration.Seconds(), byTerminal)
	m.elementsScanned.Add(ctx, int64(scanned), byTerminal)
	m.elementsEmitted.Add(ctx, int64(emitted), byTerminal)
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
