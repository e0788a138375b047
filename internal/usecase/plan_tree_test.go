package usecase

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsplan-service/internal/domain/entity"
)

func TestBuildPlanTree_FlattenPreservesOrderAndCount(t *testing.T) {
	nodes := []*entity.PlanNode{
		testNode("b", "", 2, entity.NodeStatusPending),
		testNode("a", "", 1, entity.NodeStatusPending),
		testNode("a2", "a", 2, entity.NodeStatusPending),
		testNode("a1", "a", 1, entity.NodeStatusPending),
		testNode("a1x", "a1", 1, entity.NodeStatusPending),
	}

	tree, err := BuildPlanTree(nodes)
	require.NoError(t, err)

	flat := tree.Flatten()
	require.Len(t, flat, len(nodes))

	ids := make([]string, 0, len(flat))
	for _, n := range flat {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"a", "a1", "a1x", "a2", "b"}, ids)

	// Parents always precede their children.
	seen := map[string]bool{}
	for _, n := range flat {
		if n.ParentID != "" {
			assert.True(t, seen[n.ParentID], "parent %s must precede %s", n.ParentID, n.ID)
		}
		seen[n.ID] = true
	}
}

func TestBuildPlanTree_RejectsCycle(t *testing.T) {
	a := testNode("a", "b", 1, entity.NodeStatusPending)
	b := testNode("b", "a", 2, entity.NodeStatusPending)

	tree, err := BuildPlanTree([]*entity.PlanNode{a, b})
	require.Error(t, err)
	assert.Nil(t, tree)

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestBuildPlanTree_RejectsSelfParent(t *testing.T) {
	_, err := BuildPlanTree([]*entity.PlanNode{testNode("a", "a", 1, entity.NodeStatusPending)})
	require.Error(t, err)
}

func TestBuildPlanTree_RejectsDanglingParent(t *testing.T) {
	_, err := BuildPlanTree([]*entity.PlanNode{testNode("a", "missing", 1, entity.NodeStatusPending)})

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Reason, "unknown parent")
}

func TestBuildPlanTree_RejectsDuplicateSiblingOrder(t *testing.T) {
	nodes := []*entity.PlanNode{
		testNode("a", "", 1, entity.NodeStatusPending),
		testNode("b", "", 1, entity.NodeStatusPending),
	}
	_, err := BuildPlanTree(nodes)
	require.Error(t, err)

	// The same order under different parents is fine.
	nodes = []*entity.PlanNode{
		testNode("a", "", 1, entity.NodeStatusPending),
		testNode("a1", "a", 1, entity.NodeStatusPending),
		testNode("b", "", 2, entity.NodeStatusPending),
		testNode("b1", "b", 1, entity.NodeStatusPending),
	}
	_, err = BuildPlanTree(nodes)
	assert.NoError(t, err)
}

func TestBuildPlanTree_RejectsDuplicateID(t *testing.T) {
	nodes := []*entity.PlanNode{
		testNode("a", "", 1, entity.NodeStatusPending),
		testNode("a", "", 2, entity.NodeStatusPending),
	}
	_, err := BuildPlanTree(nodes)
	require.Error(t, err)
}

func TestBuildPlanTree_RejectsOversizedPlan(t *testing.T) {
	nodes := make([]*entity.PlanNode, 0, MaxNodesPerPlan+1)
	for i := 0; i <= MaxNodesPerPlan; i++ {
		nodes = append(nodes, testNode(fmt.Sprintf("n%d", i), "", i, entity.NodeStatusPending))
	}
	_, err := BuildPlanTree(nodes)
	require.Error(t, err)
}

func TestBuildPlanTree_EmptyInput(t *testing.T) {
	tree, err := BuildPlanTree(nil)
	require.NoError(t, err)
	assert.Empty(t, tree.Flatten())
	assert.Zero(t, tree.TotalExpectedMinutes())
}

func TestTotalExpectedMinutes_SkipsNodesWithoutDuration(t *testing.T) {
	a := testNode("a", "", 1, entity.NodeStatusPending)
	a.ExpectedMinutes = intPtr(60)
	b := testNode("b", "", 2, entity.NodeStatusPending)
	c := testNode("c", "a", 1, entity.NodeStatusPending)
	c.ExpectedMinutes = intPtr(30)

	tree, err := BuildPlanTree([]*entity.PlanNode{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, 90, tree.TotalExpectedMinutes())
}
