package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"opsplan-service/internal/domain/entity"
)

func TestAssess_MonotonicWithoutProgress(t *testing.T) {
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)
	plan := testPlan(entity.PlanStatusInProgress, start, end,
		testNode("n1", "", 1, entity.NodeStatusPending),
	)
	policy := DefaultRiskPolicy()

	// With zero progress the classification only degrades as time passes.
	assert.Equal(t, entity.RiskOnTrack, policy.Assess(plan, start.Add(1*time.Hour)))
	assert.Equal(t, entity.RiskOnTrack, policy.Assess(plan, start.Add(7*time.Hour)))
	assert.Equal(t, entity.RiskAtRisk, policy.Assess(plan, start.Add(8*time.Hour)))
	assert.Equal(t, entity.RiskAtRisk, policy.Assess(plan, start.Add(9*time.Hour)))
	assert.Equal(t, entity.RiskOverdue, policy.Assess(plan, end.Add(time.Minute)))
	assert.Equal(t, entity.RiskOverdue, policy.Assess(plan, end.Add(24*time.Hour)))
}

func TestAssess_ProgressAheadOfScheduleStaysOnTrack(t *testing.T) {
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)
	plan := testPlan(entity.PlanStatusInProgress, start, end,
		testNode("n1", "", 1, entity.NodeStatusCompleted),
		testNode("n2", "", 2, entity.NodeStatusSkipped),
	)

	assert.Equal(t, entity.RiskOnTrack, DefaultRiskPolicy().Assess(plan, start.Add(9*time.Hour)))
}

func TestAssess_TerminalPlansNeverFlagged(t *testing.T) {
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	policy := DefaultRiskPolicy()

	completed := testPlan(entity.PlanStatusCompleted, start, end)
	cancelled := testPlan(entity.PlanStatusCancelled, start, end)
	late := end.Add(48 * time.Hour)

	assert.Equal(t, entity.RiskOnTrack, policy.Assess(completed, late))
	assert.Equal(t, entity.RiskOnTrack, policy.Assess(cancelled, late))
}

func TestAssess_EmptyPlanOnlyGoesOverdue(t *testing.T) {
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	plan := testPlan(entity.PlanStatusScheduled, start, end)
	policy := DefaultRiskPolicy()

	// No nodes means full completion, so the tail of the window is fine.
	assert.Equal(t, entity.RiskOnTrack, policy.Assess(plan, start.Add(59*time.Minute)))
	assert.Equal(t, entity.RiskOverdue, policy.Assess(plan, end.Add(time.Second)))
}

func TestAssess_CustomThreshold(t *testing.T) {
	start := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)
	plan := testPlan(entity.PlanStatusInProgress, start, end,
		testNode("n1", "", 1, entity.NodeStatusPending),
	)

	// A 50% tail flags the plan much earlier than the default 20%.
	wide := RiskPolicy{FinalWindowFraction: 0.5}
	assert.Equal(t, entity.RiskAtRisk, wide.Assess(plan, start.Add(6*time.Hour)))
	assert.Equal(t, entity.RiskOnTrack, DefaultRiskPolicy().Assess(plan, start.Add(6*time.Hour)))
}
