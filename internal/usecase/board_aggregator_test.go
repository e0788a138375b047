package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsplan-service/internal/domain/entity"
)

func boardPlan(id, customerID string, status entity.PlanStatus, start, end time.Time, nodes ...*entity.PlanNode) *entity.Plan {
	plan := testPlan(status, start, end, nodes...)
	plan.ID = id
	plan.CustomerID = customerID
	return plan
}

func TestBoard_EmptyInput(t *testing.T) {
	agg := NewBoardAggregator(DefaultRiskPolicy())
	view := agg.Build("tenant-1", nil, entity.GranularityDay, time.Now(), time.UTC)

	require.NotNil(t, view)
	assert.Empty(t, view.CustomerGroups)
	assert.Empty(t, view.TimeBuckets)
	assert.NotNil(t, view.Metrics.StatusCounts)
	assert.Zero(t, view.Metrics.TotalPlans)
	assert.Zero(t, view.Metrics.AtRiskCount)
	assert.Zero(t, view.Metrics.CompletionRate)
	assert.Zero(t, view.Metrics.AvgDurationHours)
}

func TestBoard_CustomerGrouping(t *testing.T) {
	ref := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	plans := []*entity.Plan{
		boardPlan("p1", "cust-b", entity.PlanStatusScheduled,
			ref.Add(24*time.Hour), ref.Add(26*time.Hour)),
		boardPlan("p2", "cust-a", entity.PlanStatusInProgress,
			ref.Add(24*time.Hour), ref.Add(28*time.Hour)),
		boardPlan("p3", "cust-a", entity.PlanStatusScheduled,
			ref.Add(48*time.Hour), ref.Add(50*time.Hour)),
	}

	agg := NewBoardAggregator(DefaultRiskPolicy())
	view := agg.Build("tenant-1", plans, entity.GranularityDay, ref, time.UTC)

	require.Len(t, view.CustomerGroups, 2)
	// Groups come back sorted by customer id for deterministic output.
	assert.Equal(t, "cust-a", view.CustomerGroups[0].CustomerID)
	assert.Equal(t, "cust-b", view.CustomerGroups[1].CustomerID)

	groupA := view.CustomerGroups[0]
	assert.Equal(t, 2, groupA.TotalPlans)
	assert.Equal(t, 1, groupA.StatusCounts[entity.PlanStatusScheduled])
	assert.Equal(t, 1, groupA.StatusCounts[entity.PlanStatusInProgress])
	assert.Equal(t, 3.0, groupA.AvgDurationHours)
	assert.Equal(t, ref.Add(24*time.Hour), groupA.EarliestStart)
	assert.Equal(t, ref.Add(50*time.Hour), groupA.LatestEnd)
	require.Len(t, groupA.Cards, 2)
	assert.Equal(t, "p2", groupA.Cards[0].ID)

	assert.Equal(t, 3, view.Metrics.TotalPlans)
	assert.Equal(t, 2, view.Metrics.StatusCounts[entity.PlanStatusScheduled])
}

func TestBoard_MultiDayPlanInSingleBucket(t *testing.T) {
	ref := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	// Spans three days but starts on June 1.
	plan := boardPlan("p1", "cust-a", entity.PlanStatusInProgress,
		time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 3, 17, 0, 0, 0, time.UTC))

	agg := NewBoardAggregator(DefaultRiskPolicy())
	view := agg.Build("tenant-1", []*entity.Plan{plan}, entity.GranularityDay, ref, time.UTC)

	require.Len(t, view.TimeBuckets, 1)
	assert.Equal(t, "2024-06-01", view.TimeBuckets[0].Label)
	assert.Len(t, view.TimeBuckets[0].Cards, 1)
}

func TestBoard_BucketLabels(t *testing.T) {
	ref := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	// June 5 2024 is a Wednesday; its ISO week starts Monday June 3.
	plan := boardPlan("p1", "cust-a", entity.PlanStatusScheduled,
		time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 5, 17, 0, 0, 0, time.UTC))
	agg := NewBoardAggregator(DefaultRiskPolicy())

	week := agg.Build("tenant-1", []*entity.Plan{plan}, entity.GranularityWeek, ref, time.UTC)
	require.Len(t, week.TimeBuckets, 1)
	assert.Equal(t, "2024-06-03", week.TimeBuckets[0].Label)

	month := agg.Build("tenant-1", []*entity.Plan{plan}, entity.GranularityMonth, ref, time.UTC)
	require.Len(t, month.TimeBuckets, 1)
	assert.Equal(t, "2024-06-01", month.TimeBuckets[0].Label)
}

func TestBoard_BucketUsesReferenceTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	ref := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	// 15:30 UTC on June 1 is 00:30 on June 2 in Tokyo.
	plan := boardPlan("p1", "cust-a", entity.PlanStatusScheduled,
		time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC))

	agg := NewBoardAggregator(DefaultRiskPolicy())
	view := agg.Build("tenant-1", []*entity.Plan{plan}, entity.GranularityDay, ref, tokyo)

	require.Len(t, view.TimeBuckets, 1)
	assert.Equal(t, "2024-06-02", view.TimeBuckets[0].Label)
}

func TestBoard_MetricsAndOverdueCards(t *testing.T) {
	ref := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	overduePlan := boardPlan("p1", "cust-a", entity.PlanStatusInProgress,
		ref.Add(-5*time.Hour), ref.Add(-2*time.Hour),
		testNode("n1", "", 1, entity.NodeStatusCompleted),
		testNode("n2", "", 2, entity.NodeStatusPending),
	)
	donePlan := boardPlan("p2", "cust-a", entity.PlanStatusCompleted,
		ref.Add(-8*time.Hour), ref.Add(-6*time.Hour),
		testNode("n3", "", 1, entity.NodeStatusCompleted),
		testNode("n4", "", 2, entity.NodeStatusSkipped),
	)

	agg := NewBoardAggregator(DefaultRiskPolicy())
	view := agg.Build("tenant-1", []*entity.Plan{overduePlan, donePlan}, entity.GranularityDay, ref, time.UTC)

	// 3 of 4 nodes are done across the snapshot.
	assert.InDelta(t, 0.75, view.Metrics.CompletionRate, 1e-9)
	assert.InDelta(t, 2.5, view.Metrics.AvgDurationHours, 1e-9)

	require.Len(t, view.CustomerGroups, 1)
	cards := view.CustomerGroups[0].Cards
	require.Len(t, cards, 2)

	var overdueCard *entity.PlanCard
	for _, card := range cards {
		if card.ID == "p1" {
			overdueCard = card
		}
	}
	require.NotNil(t, overdueCard)
	assert.True(t, overdueCard.Overdue)
	assert.Equal(t, 120, overdueCard.MinutesOverdue)
	assert.InDelta(t, 50.0, overdueCard.CompletionPercent, 1e-9)
}
