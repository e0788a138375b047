package entity

import "time"

// Audit actions recorded for plan mutations
const (
	AuditActionPlanCreated      = "plan.created"
	AuditActionPlanUpdated      = "plan.updated"
	AuditActionPlanDeleted      = "plan.deleted"
	AuditActionPlanTransitioned = "plan.transitioned"
	AuditActionNodeStatusSet    = "plan.node_status_set"
)

// AuditEvent is one immutable record of a mutation, handed to the audit
// collaborator; this service never reads audit events back.
type AuditEvent struct {
	ID         string
	TenantID   string
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	Detail     map[string]interface{}
	RecordedAt time.Time
}
