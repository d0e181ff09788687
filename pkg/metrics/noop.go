package metrics

import "context"

// NoopCollector is the no-op implementation used when no collector is
// configured.
type NoopCollector struct{}

// NewNoopCollector creates a no-op collector
func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

// RecordOperation does nothing when metrics are disabled
func (n *NoopCollector) RecordOperation(ctx context.Context, operation string, status string, durationMs int64) {
}

// RecordStage does nothing when metrics are disabled
func (n *NoopCollector) RecordStage(ctx context.Context, operation string, stage string, durationMs int64) {
}

// RecordError does nothing when metrics are disabled
func (n *NoopCollector) RecordError(ctx context.Context, operation string, errorType string) {
}

// SetGraphSize does nothing when metrics are disabled
func (n *NoopCollector) SetGraphSize(ctx context.Context, kind string, count int64) {
}
