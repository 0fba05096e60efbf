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

	"github.com/emiliopalmerini/skillscout/internal/discover"
)

const (
	serviceName    = "skillscout"
	serviceVersion = "1.0.0"
)

// Exporter exports discovery run metrics to an OTEL Collector.
type Exporter struct {
	provider         *sdkmetric.MeterProvider
	meter            metric.Meter
	sessionsScanned  metric.Int64Counter
	patternsFound    metric.Int64Counter
	candidatesRanked metric.Int64Counter
	runsTotal        metric.Int64Counter
	runDuration      metric.Float64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
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
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	sessionsScanned, err := meter.Int64Counter(
		"skillscout_sessions_scanned_total",
		metric.WithDescription("Sessions handed to the pattern processor"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}

	patternsFound, err := meter.Int64Counter(
		"skillscout_patterns_found_total",
		metric.WithDescription("Patterns surviving noise filtering"),
		metric.WithUnit("{pattern}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating patterns counter: %w", err)
	}

	candidatesRanked, err := meter.Int64Counter(
		"skillscout_candidates_ranked_total",
		metric.WithDescription("Ranked skill candidates produced"),
		metric.WithUnit("{candidate}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating candidates counter: %w", err)
	}

	runsTotal, err := meter.Int64Counter(
		"skillscout_runs_total",
		metric.WithDescription("Discovery runs completed"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating runs counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram(
		"skillscout_run_duration_seconds",
		metric.WithDescription("Discovery run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &Exporter{
		provider:         provider,
		meter:            meter,
		sessionsScanned:  sessionsScanned,
		patternsFound:    patternsFound,
		candidatesRanked: candidatesRanked,
		runsTotal:        runsTotal,
		runDuration:      runDuration,
	}, nil
}

// ExportRun exports metrics for one completed discovery run.
func (e *Exporter) ExportRun(ctx context.Context, report *discover.Report) error {
	opt := metric.WithAttributes(
		attribute.Bool("clustering_degraded", report.ClusteringDegraded),
	)

	e.sessionsScanned.Add(ctx, int64(report.Stats.Processed()), opt)
	e.patternsFound.Add(ctx, int64(report.PatternsFound), opt)
	e.candidatesRanked.Add(ctx, int64(len(report.Candidates)), opt)
	e.runsTotal.Add(ctx, 1, opt)
	e.runDuration.Record(ctx, report.FinishedAt.Sub(report.StartedAt).Seconds(), opt)

	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
