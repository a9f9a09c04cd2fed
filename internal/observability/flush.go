package observability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry drains buffered telemetry during graceful shutdown, after
// in-flight requests have completed. Prometheus is pull-based so there is
// nothing to push; in practice this syncs the logger.
func FlushTelemetry(ctx context.Context, logger *zap.Logger) error {
	if logger != nil {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("flush logs: %w", err)
		}
	}
	return nil
}
