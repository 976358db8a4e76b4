package workers

import (
	"context"
	"time"

	"routegraph/dashboard/internal/metrics"
)

type WorkersContainer struct {
	ImportWatcher *ImportWatcher
}

func InitWorkers(ctx context.Context, importInterval, importDeadline time.Duration, m *metrics.MetricsRegistry) *WorkersContainer {
	return &WorkersContainer{
		ImportWatcher: NewImportWatcher(ctx, importInterval, importDeadline, m),
	}
}
