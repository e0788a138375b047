package usecase

import (
	"fmt"
	"strings"

	"opsplan-service/internal/domain/entity"
)

// ValidationError reports a malformed plan or node tree (cycle, duplicate
// sibling order, dangling parent reference, bad schedule).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// InvalidTransitionError reports an illegal plan status change
type InvalidTransitionError struct {
	From entity.PlanStatus
	To   entity.PlanStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// IncompletePlanError reports an attempt to complete a plan while nodes are
// still outstanding, naming the blocking nodes.
type IncompletePlanError struct {
	BlockingNodeIDs []string
}

func (e *IncompletePlanError) Error() string {
	return fmt.Sprintf("plan cannot complete, nodes outstanding: %s", strings.Join(e.BlockingNodeIDs, ", "))
}

// NotFoundError reports an unknown plan or node id
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// PersistenceError wraps an opaque failure from the storage collaborator.
// The underlying cause is preserved for logs but not interpreted further.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
