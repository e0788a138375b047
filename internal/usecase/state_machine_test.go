package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsplan-service/internal/domain/entity"
)

var allStatuses = []entity.PlanStatus{
	entity.PlanStatusDraft,
	entity.PlanStatusDesign,
	entity.PlanStatusScheduled,
	entity.PlanStatusInProgress,
	entity.PlanStatusCompleted,
	entity.PlanStatusCancelled,
}

func TestCanTransition_ForwardSequence(t *testing.T) {
	assert.True(t, CanTransition(entity.PlanStatusDraft, entity.PlanStatusDesign))
	assert.True(t, CanTransition(entity.PlanStatusDesign, entity.PlanStatusScheduled))
	assert.True(t, CanTransition(entity.PlanStatusScheduled, entity.PlanStatusInProgress))
	assert.True(t, CanTransition(entity.PlanStatusInProgress, entity.PlanStatusCompleted))
}

func TestCanTransition_RejectsEverythingElse(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if forwardTransitions[from] == to && !from.IsTerminal() {
				continue
			}
			if to == entity.PlanStatusCancelled && !from.IsTerminal() {
				continue
			}
			assert.False(t, CanTransition(from, to), "%s -> %s must be rejected", from, to)
		}
	}
}

func TestCanTransition_CancelFromNonTerminal(t *testing.T) {
	for _, from := range allStatuses {
		if from.IsTerminal() {
			assert.False(t, CanTransition(from, entity.PlanStatusCancelled), "cancel from %s", from)
			continue
		}
		assert.True(t, CanTransition(from, entity.PlanStatusCancelled), "cancel from %s", from)
	}
}

func TestValidateTransition_InvalidReportsStates(t *testing.T) {
	plan := testPlan(entity.PlanStatusDraft, time.Now(), time.Now().Add(time.Hour))

	err := ValidateTransition(plan, entity.PlanStatusScheduled)
	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, entity.PlanStatusDraft, transition.From)
	assert.Equal(t, entity.PlanStatusScheduled, transition.To)
}

func TestValidateTransition_CompletionGatedOnNodes(t *testing.T) {
	plan := testPlan(entity.PlanStatusInProgress, time.Now(), time.Now().Add(time.Hour),
		testNode("n1", "", 1, entity.NodeStatusCompleted),
		testNode("n2", "", 2, entity.NodeStatusPending),
		testNode("n3", "", 3, entity.NodeStatusFailed),
	)

	err := ValidateTransition(plan, entity.PlanStatusCompleted)
	var incomplete *IncompletePlanError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"n2", "n3"}, incomplete.BlockingNodeIDs)
}

func TestValidateTransition_CompletionWithSkippedNodes(t *testing.T) {
	plan := testPlan(entity.PlanStatusInProgress, time.Now(), time.Now().Add(time.Hour),
		testNode("n1", "", 1, entity.NodeStatusCompleted),
		testNode("n2", "", 2, entity.NodeStatusSkipped),
	)
	assert.NoError(t, ValidateTransition(plan, entity.PlanStatusCompleted))
}

func TestValidateTransition_UnknownStatus(t *testing.T) {
	plan := testPlan(entity.PlanStatusDraft, time.Now(), time.Now().Add(time.Hour))
	err := ValidateTransition(plan, entity.PlanStatus("ARCHIVED"))
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}
