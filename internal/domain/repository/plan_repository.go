package repository

import (
	"context"
	"errors"
	"time"

	"opsplan-service/internal/domain/entity"
)

// ErrNotFound is returned by repositories when the requested row does not
// exist; implementations translate their driver's sentinel to this one.
var ErrNotFound = errors.New("record not found")

// PlanFilter narrows List queries. Zero values mean "no constraint".
type PlanFilter struct {
	TenantID   string
	CustomerID string
	OwnerID    string
	Status     entity.PlanStatus
	StartFrom  time.Time
	StartTo    time.Time
	Limit      int
}

// PlanRepository defines storage operations for the plan aggregate. Writes
// cover the whole aggregate (plan, nodes, reminder rules, participants) in
// one transaction.
type PlanRepository interface {
	Create(ctx context.Context, plan *entity.Plan) error
	Update(ctx context.Context, plan *entity.Plan) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Plan, error)
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, filter PlanFilter) ([]*entity.Plan, error)
	// ListActive returns the tenant's plans in a non-terminal status,
	// which is the working set for reminder evaluation.
	ListActive(ctx context.Context, tenantID string) ([]*entity.Plan, error)
}
