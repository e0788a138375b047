package usecase

import "opsplan-service/internal/domain/entity"

// forwardTransitions maps each plan status to its single allowed successor.
// The lifecycle is strictly sequential; skipping a stage is rejected.
var forwardTransitions = map[entity.PlanStatus]entity.PlanStatus{
	entity.PlanStatusDraft:      entity.PlanStatusDesign,
	entity.PlanStatusDesign:     entity.PlanStatusScheduled,
	entity.PlanStatusScheduled:  entity.PlanStatusInProgress,
	entity.PlanStatusInProgress: entity.PlanStatusCompleted,
}

// CanTransition reports whether from → to is an allowed plan transition.
// CANCELLED is reachable from any non-terminal state.
func CanTransition(from, to entity.PlanStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == entity.PlanStatusCancelled {
		return true
	}
	return forwardTransitions[from] == to
}

// ValidateTransition checks that the plan may move to the target status.
// Completing a plan additionally requires every node to be COMPLETED or
// SKIPPED; otherwise the error names the blocking nodes.
func ValidateTransition(plan *entity.Plan, to entity.PlanStatus) error {
	if !to.IsValid() {
		return &ValidationError{Reason: "unknown plan status " + string(to)}
	}
	if !CanTransition(plan.Status, to) {
		return &InvalidTransitionError{From: plan.Status, To: to}
	}
	if to == entity.PlanStatusCompleted {
		var blocking []string
		for _, n := range plan.Nodes {
			if !n.Status.Done() {
				blocking = append(blocking, n.ID)
			}
		}
		if len(blocking) > 0 {
			return &IncompletePlanError{BlockingNodeIDs: blocking}
		}
	}
	return nil
}
