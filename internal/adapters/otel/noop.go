package otel

import (
	"context"

	"github.com/emiliopalmerini/skillscout/internal/discover"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) ExportRun(ctx context.Context, report *discover.Report) error {
	return nil
}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
