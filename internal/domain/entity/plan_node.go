package entity

import "time"

// NodeStatus is the execution status of a single plan node
type NodeStatus string

const (
	NodeStatusPending    NodeStatus = "PENDING"
	NodeStatusInProgress NodeStatus = "IN_PROGRESS"
	NodeStatusCompleted  NodeStatus = "COMPLETED"
	NodeStatusSkipped    NodeStatus = "SKIPPED"
	NodeStatusFailed     NodeStatus = "FAILED"
)

// IsValid reports whether the value is one of the known node statuses
func (s NodeStatus) IsValid() bool {
	switch s {
	case NodeStatusPending, NodeStatusInProgress, NodeStatusCompleted,
		NodeStatusSkipped, NodeStatusFailed:
		return true
	}
	return false
}

// Done reports whether the node no longer blocks plan completion
func (s NodeStatus) Done() bool {
	return s == NodeStatusCompleted || s == NodeStatusSkipped
}

// PlanNode is one task within a plan. Nodes form a tree: a node may carry
// sub-steps as children via ParentID. Sibling order is unique per parent.
type PlanNode struct {
	ID              string
	PlanID          string
	ParentID        string // empty for root nodes
	Name            string
	Type            string // free-form category, e.g. inspection/check/approval
	AssigneeID      string
	OrderNo         int
	ExpectedMinutes *int // nil when no expected duration was supplied
	ActionRef       string
	Description     string
	Status          NodeStatus
	ActualStartAt   *time.Time
	ActualEndAt     *time.Time
}
