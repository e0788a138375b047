package repository

import (
	"context"

	"opsplan-service/internal/domain/entity"
)

// AuditSink defines the interface for recording audit events. Recording is
// best-effort from the caller's point of view; failures are logged, not
// surfaced to the client.
type AuditSink interface {
	Record(ctx context.Context, event *entity.AuditEvent) error
}
