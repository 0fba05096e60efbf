// Package ports declares the interfaces between the discovery pipeline
// and its adapters.
package ports

import (
	"context"

	"github.com/emiliopalmerini/skillscout/internal/discover"
)

// MetricsExporter publishes discovery run metrics. Implementations must
// be safe to call once per run; failures are non-fatal to the run.
type MetricsExporter interface {
	ExportRun(ctx context.Context, report *discover.Report) error
	Close(ctx context.Context) error
}
