package usecase

import (
	"time"

	"opsplan-service/internal/domain/entity"
)

// DefaultFinalWindowFraction is the tail share of the scheduled window in
// which a plan that is behind schedule counts as at risk. The 20% value is
// a tuning default, not a domain constant.
const DefaultFinalWindowFraction = 0.20

// RiskPolicy holds the tunable parameters of the at-risk heuristic
type RiskPolicy struct {
	FinalWindowFraction float64
}

// DefaultRiskPolicy returns the policy with the named default threshold
func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{FinalWindowFraction: DefaultFinalWindowFraction}
}

// Assess classifies a plan's schedule health at the given instant. It is a
// pure function of the plan's schedule and node progress:
//
//   - OVERDUE when the plan is not terminal and now is past its end.
//   - AT_RISK when the plan is not terminal, now sits in the final part of
//     the window (per FinalWindowFraction), and the completion fraction
//     trails the elapsed-time fraction.
//   - ON_TRACK otherwise.
func (p RiskPolicy) Assess(plan *entity.Plan, now time.Time) entity.RiskLevel {
	if plan.Status.IsTerminal() {
		return entity.RiskOnTrack
	}
	if now.After(plan.EndAt) {
		return entity.RiskOverdue
	}

	window := plan.EndAt.Sub(plan.StartAt)
	if window <= 0 {
		return entity.RiskOnTrack
	}
	elapsed := now.Sub(plan.StartAt)
	if elapsed < 0 {
		return entity.RiskOnTrack
	}

	elapsedFraction := float64(elapsed) / float64(window)
	if elapsedFraction < 1-p.FinalWindowFraction {
		return entity.RiskOnTrack
	}
	if plan.CompletionFraction() < elapsedFraction {
		return entity.RiskAtRisk
	}
	return entity.RiskOnTrack
}
