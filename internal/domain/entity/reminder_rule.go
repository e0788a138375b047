package entity

import "time"

// TriggerType declares what schedule instant a reminder rule is anchored to
type TriggerType string

const (
	TriggerBeforeStart TriggerType = "BEFORE_START"
	TriggerBeforeEnd   TriggerType = "BEFORE_END"
	TriggerOverdue     TriggerType = "OVERDUE"
)

// IsValid reports whether the value is one of the known trigger types
func (t TriggerType) IsValid() bool {
	switch t {
	case TriggerBeforeStart, TriggerBeforeEnd, TriggerOverdue:
		return true
	}
	return false
}

// ReminderRule declares when a notification should fire relative to a plan
// or node schedule. Rules are owned exclusively by their plan.
type ReminderRule struct {
	ID         string
	PlanID     string
	Trigger    TriggerType
	Offset     time.Duration // subtracted from the anchor for BEFORE_* triggers
	NodeID     string        // empty for plan-level rules
	TemplateID string
	Enabled    bool
}

// DueReminder is one reminder that an evaluation pass found due. The caller
// resolves TemplateID through the template collaborator and is responsible
// for deduplicating repeated firings of OVERDUE rules.
type DueReminder struct {
	RuleID     string
	PlanID     string
	TenantID   string
	PlanTitle  string
	OwnerID    string // default recipient for delivery
	Trigger    TriggerType
	Target     string // human-readable description of the plan or node
	TemplateID string
	AnchorAt   time.Time // the schedule instant the rule is anchored to
	FireAt     time.Time // AnchorAt minus offset for BEFORE_* triggers
}
