package entity

import "time"

// Granularity selects how board time buckets are sized
type Granularity string

const (
	GranularityDay   Granularity = "DAY"
	GranularityWeek  Granularity = "WEEK"
	GranularityMonth Granularity = "MONTH"
)

// IsValid reports whether the value is one of the known granularities
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return true
	}
	return false
}

// RiskLevel is the schedule-health classification of a plan
type RiskLevel string

const (
	RiskOnTrack RiskLevel = "ON_TRACK"
	RiskAtRisk  RiskLevel = "AT_RISK"
	RiskOverdue RiskLevel = "OVERDUE"
)

// PlanCard is the per-plan summary shown on the board
type PlanCard struct {
	ID                string
	Title             string
	Status            PlanStatus
	OwnerID           string
	CustomerID        string
	StartAt           time.Time
	EndAt             time.Time
	Timezone          string
	CompletionPercent float64
	AtRisk            bool
	Overdue           bool
	MinutesOverdue    int // zero unless Overdue
}

// CustomerGroup aggregates the board plans belonging to one customer
type CustomerGroup struct {
	CustomerID       string
	TotalPlans       int
	StatusCounts     map[PlanStatus]int
	AtRiskCount      int
	AvgDurationHours float64
	EarliestStart    time.Time
	LatestEnd        time.Time
	Cards            []*PlanCard
}

// TimeBucket partitions board plans by scheduled start at the requested
// granularity. A plan belongs to exactly one bucket: the one containing
// its start time in the board's reference timezone.
type TimeBucket struct {
	Label   string // YYYY-MM-DD of the day, ISO week start, or first of month
	StartAt time.Time
	Cards   []*PlanCard
}

// BoardMetrics are the top-level counters across all plans on the board
type BoardMetrics struct {
	TotalPlans       int
	StatusCounts     map[PlanStatus]int
	AtRiskCount      int
	CompletionRate   float64 // done node count / total node count, 0 when no nodes
	AvgDurationHours float64
}

// PlanBoardView is a derived, request-scoped projection of a set of plans.
// It is recomputed in full on every request and never persisted.
type PlanBoardView struct {
	TenantID       string
	Granularity    Granularity
	ReferenceTime  time.Time
	Timezone       string
	CustomerGroups []*CustomerGroup
	TimeBuckets    []*TimeBucket
	Metrics        BoardMetrics
}
