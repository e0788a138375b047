package usecase

import (
	"sort"
	"time"

	"opsplan-service/internal/domain/entity"
)

// BoardAggregator turns a snapshot of plans into a PlanBoardView. It is a
// pure transformation: for a fixed input, reference time, and timezone the
// output is fully deterministic, with no I/O and no retained state.
type BoardAggregator struct {
	risk RiskPolicy
}

// NewBoardAggregator creates a board aggregator with the given risk policy
func NewBoardAggregator(risk RiskPolicy) *BoardAggregator {
	return &BoardAggregator{risk: risk}
}

// Build computes the board view for the supplied plans. The caller has
// already applied tenant and filter constraints. Plans are grouped by
// customer and partitioned into time buckets by start time converted to
// loc; a plan spanning several buckets lands only in the bucket containing
// its start. Empty input yields empty groups and all-zero metrics.
func (a *BoardAggregator) Build(tenantID string, plans []*entity.Plan, granularity entity.Granularity, refTime time.Time, loc *time.Location) *entity.PlanBoardView {
	view := &entity.PlanBoardView{
		TenantID:       tenantID,
		Granularity:    granularity,
		ReferenceTime:  refTime,
		Timezone:       loc.String(),
		CustomerGroups: []*entity.CustomerGroup{},
		TimeBuckets:    []*entity.TimeBucket{},
		Metrics: entity.BoardMetrics{
			StatusCounts: map[entity.PlanStatus]int{},
		},
	}

	groups := make(map[string]*entity.CustomerGroup)
	buckets := make(map[string]*entity.TimeBucket)
	totalNodes, doneNodes := 0, 0
	var totalDuration time.Duration

	for _, plan := range plans {
		card := a.buildCard(plan, refTime)

		view.Metrics.TotalPlans++
		view.Metrics.StatusCounts[plan.Status]++
		if card.AtRisk {
			view.Metrics.AtRiskCount++
		}
		done, total := plan.NodeProgress()
		doneNodes += done
		totalNodes += total
		totalDuration += plan.Duration()

		group, ok := groups[plan.CustomerID]
		if !ok {
			group = &entity.CustomerGroup{
				CustomerID:    plan.CustomerID,
				StatusCounts:  map[entity.PlanStatus]int{},
				EarliestStart: plan.StartAt,
				LatestEnd:     plan.EndAt,
			}
			groups[plan.CustomerID] = group
		}
		group.TotalPlans++
		group.StatusCounts[plan.Status]++
		if card.AtRisk {
			group.AtRiskCount++
		}
		if plan.StartAt.Before(group.EarliestStart) {
			group.EarliestStart = plan.StartAt
		}
		if plan.EndAt.After(group.LatestEnd) {
			group.LatestEnd = plan.EndAt
		}
		group.Cards = append(group.Cards, card)

		label, bucketStart := bucketFor(plan.StartAt, granularity, loc)
		bucket, ok := buckets[label]
		if !ok {
			bucket = &entity.TimeBucket{Label: label, StartAt: bucketStart}
			buckets[label] = bucket
		}
		bucket.Cards = append(bucket.Cards, card)
	}

	if view.Metrics.TotalPlans > 0 {
		view.Metrics.AvgDurationHours = totalDuration.Hours() / float64(view.Metrics.TotalPlans)
	}
	if totalNodes > 0 {
		view.Metrics.CompletionRate = float64(doneNodes) / float64(totalNodes)
	}

	for _, group := range groups {
		var groupDuration time.Duration
		for _, card := range group.Cards {
			groupDuration += card.EndAt.Sub(card.StartAt)
		}
		group.AvgDurationHours = groupDuration.Hours() / float64(group.TotalPlans)
		sortCards(group.Cards)
		view.CustomerGroups = append(view.CustomerGroups, group)
	}
	sort.Slice(view.CustomerGroups, func(i, j int) bool {
		return view.CustomerGroups[i].CustomerID < view.CustomerGroups[j].CustomerID
	})

	for _, bucket := range buckets {
		sortCards(bucket.Cards)
		view.TimeBuckets = append(view.TimeBuckets, bucket)
	}
	sort.Slice(view.TimeBuckets, func(i, j int) bool {
		return view.TimeBuckets[i].StartAt.Before(view.TimeBuckets[j].StartAt)
	})

	return view
}

func (a *BoardAggregator) buildCard(plan *entity.Plan, refTime time.Time) *entity.PlanCard {
	risk := a.risk.Assess(plan, refTime)
	card := &entity.PlanCard{
		ID:                plan.ID,
		Title:             plan.Title,
		Status:            plan.Status,
		OwnerID:           plan.OwnerID,
		CustomerID:        plan.CustomerID,
		StartAt:           plan.StartAt,
		EndAt:             plan.EndAt,
		Timezone:          plan.Timezone,
		CompletionPercent: plan.CompletionFraction() * 100,
		AtRisk:            risk == entity.RiskAtRisk,
		Overdue:           risk == entity.RiskOverdue,
	}
	if card.Overdue {
		card.MinutesOverdue = int(refTime.Sub(plan.EndAt).Minutes())
	}
	return card
}

// bucketFor returns the bucket label and bucket start for a plan start time
// in the board's reference timezone. Labels are calendar dates: the day
// itself, the Monday of the ISO week, or the first of the month.
func bucketFor(startAt time.Time, granularity entity.Granularity, loc *time.Location) (string, time.Time) {
	local := startAt.In(loc)
	var day time.Time
	switch granularity {
	case entity.GranularityWeek:
		back := (int(local.Weekday()) + 6) % 7
		monday := local.AddDate(0, 0, -back)
		day = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, loc)
	case entity.GranularityMonth:
		day = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	default:
		day = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	}
	return day.Format("2006-01-02"), day
}

func sortCards(cards []*entity.PlanCard) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].StartAt.Equal(cards[j].StartAt) {
			return cards[i].ID < cards[j].ID
		}
		return cards[i].StartAt.Before(cards[j].StartAt)
	})
}
