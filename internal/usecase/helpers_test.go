package usecase

import (
	"time"

	"opsplan-service/internal/domain/entity"
)

func intPtr(n int) *int {
	return &n
}

func testNode(id, parentID string, order int, status entity.NodeStatus) *entity.PlanNode {
	return &entity.PlanNode{
		ID:       id,
		PlanID:   "plan-1",
		ParentID: parentID,
		Name:     "Node " + id,
		Type:     "inspection",
		OrderNo:  order,
		Status:   status,
	}
}

func testPlan(status entity.PlanStatus, start, end time.Time, nodes ...*entity.PlanNode) *entity.Plan {
	return &entity.Plan{
		ID:         "plan-1",
		TenantID:   "tenant-1",
		Title:      "Quarterly inspection",
		CustomerID: "customer-1",
		OwnerID:    "owner-1",
		StartAt:    start,
		EndAt:      end,
		Timezone:   "UTC",
		Status:     status,
		Nodes:      nodes,
	}
}
