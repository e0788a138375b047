package entity

import "time"

// PlanStatus is the lifecycle status of a plan
type PlanStatus string

const (
	PlanStatusDraft      PlanStatus = "DRAFT"
	PlanStatusDesign     PlanStatus = "DESIGN"
	PlanStatusScheduled  PlanStatus = "SCHEDULED"
	PlanStatusInProgress PlanStatus = "IN_PROGRESS"
	PlanStatusCompleted  PlanStatus = "COMPLETED"
	PlanStatusCancelled  PlanStatus = "CANCELLED"
)

// IsTerminal reports whether the status admits no further transitions
func (s PlanStatus) IsTerminal() bool {
	return s == PlanStatusCompleted || s == PlanStatusCancelled
}

// IsValid reports whether the value is one of the known plan statuses
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusDraft, PlanStatusDesign, PlanStatusScheduled,
		PlanStatusInProgress, PlanStatusCompleted, PlanStatusCancelled:
		return true
	}
	return false
}

// Plan is the aggregate root for one unit of scheduled work. It owns its
// node tree and reminder rules exclusively; deleting a plan cascades to both.
type Plan struct {
	ID           string
	TenantID     string
	Title        string
	Description  string
	CustomerID   string
	OwnerID      string
	StartAt      time.Time
	EndAt        time.Time
	Timezone     string // IANA zone name used for display
	Participants []string
	Status       PlanStatus
	Nodes        []*PlanNode
	Reminders    []*ReminderRule
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Duration returns the scheduled window length
func (p *Plan) Duration() time.Duration {
	return p.EndAt.Sub(p.StartAt)
}

// NodeProgress returns how many nodes count as done (completed or skipped)
// and the total node count
func (p *Plan) NodeProgress() (done, total int) {
	for _, n := range p.Nodes {
		if n.Status == NodeStatusCompleted || n.Status == NodeStatusSkipped {
			done++
		}
	}
	return done, len(p.Nodes)
}

// CompletionFraction returns done/total node progress in [0,1]. A plan with
// no nodes reports 1 so that empty plans never read as behind schedule.
func (p *Plan) CompletionFraction() float64 {
	done, total := p.NodeProgress()
	if total == 0 {
		return 1
	}
	return float64(done) / float64(total)
}

// NodeByID returns the node with the given id, or nil
func (p *Plan) NodeByID(id string) *PlanNode {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
