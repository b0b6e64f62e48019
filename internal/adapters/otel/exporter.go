package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/abtest/internal/domain"
)

const (
	serviceName    = "abtest"
	serviceVersion = "1.0.0"
)

// Exporter exports report outcomes to an OTEL Collector.
type Exporter struct {
	provider     *sdkmetric.MeterProvider
	reportsTotal metric.Int64Counter
	recordsTotal metric.Int64Counter
	pValueHist   metric.Float64Histogram
	liftHist     metric.Float64Histogram
	effectHist   metric.Float64Histogram
}

// NewExporter creates an exporter that pushes to the configured OTLP endpoint.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	e, err := NewExporterWithReader(ctx, sdkmetric.NewPeriodicReader(exp))
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(e.provider)
	return e, nil
}

// NewExporterWithReader builds the instruments on a meter provider fed to reader.
func NewExporterWithReader(ctx context.Context, reader sdkmetric.Reader) (*Exporter, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	e := &Exporter{provider: provider}

	if e.reportsTotal, err = meter.Int64Counter(
		"abtest_reports_total",
		metric.WithDescription("Total number of computed reports"),
		metric.WithUnit("{report}"),
	); err != nil {
		return nil, fmt.Errorf("creating reports counter: %w", err)
	}

	if e.recordsTotal, err = meter.Int64Counter(
		"abtest_records_total",
		metric.WithDescription("Trial records analysed across reports"),
		metric.WithUnit("{record}"),
	); err != nil {
		return nil, fmt.Errorf("creating records counter: %w", err)
	}

	if e.pValueHist, err = meter.Float64Histogram(
		"abtest_report_p_value",
		metric.WithDescription("One-sided z-test p-value per report"),
		metric.WithExplicitBucketBoundaries(1e-6, 1e-4, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1),
	); err != nil {
		return nil, fmt.Errorf("creating p-value histogram: %w", err)
	}

	if e.liftHist, err = meter.Float64Histogram(
		"abtest_report_lift_pct",
		metric.WithDescription("Relative lift of treatment over control"),
		metric.WithUnit("%"),
	); err != nil {
		return nil, fmt.Errorf("creating lift histogram: %w", err)
	}

	if e.effectHist, err = meter.Float64Histogram(
		"abtest_report_cohens_h",
		metric.WithDescription("Cohen's h effect size per report"),
	); err != nil {
		return nil, fmt.Errorf("creating effect size histogram: %w", err)
	}

	return e, nil
}

// ExportReport records the outcome of one report run.
func (e *Exporter) ExportReport(ctx context.Context, experiment string, report *domain.Report) error {
	opt := metric.WithAttributes(
		attribute.String("experiment", experiment),
		attribute.String("recommendation", string(report.Decision.Recommendation)),
		attribute.String("effect", string(report.Metrics.Effect)),
	)

	m := report.Metrics
	e.reportsTotal.Add(ctx, 1, opt)
	e.recordsTotal.Add(ctx, m.Treatment.Total+m.Control.Total, opt)
	e.pValueHist.Record(ctx, m.ZTest.PValue, opt)
	e.liftHist.Record(ctx, m.RelativeLiftPct, opt)
	e.effectHist.Record(ctx, m.CohensH, opt)

	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
