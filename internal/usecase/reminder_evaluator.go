package usecase

import (
	"fmt"
	"time"

	"opsplan-service/internal/domain/entity"
)

// nodeWindow is a node's derived scheduled interval. Nodes carry no stored
// schedule of their own; they are laid out sequentially from plan start in
// tree order, each occupying its expected duration (zero when unset).
type nodeWindow struct {
	start time.Time
	end   time.Time
}

func deriveNodeWindows(plan *entity.Plan) map[string]nodeWindow {
	windows := make(map[string]nodeWindow, len(plan.Nodes))
	tree, err := BuildPlanTree(plan.Nodes)
	if err != nil {
		// A stored plan should always rebuild; fall back to the plan
		// window for every node rather than dropping reminders.
		for _, n := range plan.Nodes {
			windows[n.ID] = nodeWindow{start: plan.StartAt, end: plan.EndAt}
		}
		return windows
	}

	cursor := plan.StartAt
	for _, n := range tree.Flatten() {
		start := cursor
		if n.ExpectedMinutes != nil {
			cursor = cursor.Add(time.Duration(*n.ExpectedMinutes) * time.Minute)
		}
		windows[n.ID] = nodeWindow{start: start, end: cursor}
	}
	return windows
}

// DueReminders evaluates the plan's enabled reminder rules at the given
// instant. window is the interval since the previous evaluation; a
// BEFORE_* rule fires when its target instant fell inside
// [fireAt, fireAt+window). OVERDUE rules fire on every evaluation after the
// plan's end until the plan reaches a terminal status; the caller owns
// deduplication. The function holds no timer or schedule state.
func DueReminders(plan *entity.Plan, now time.Time, window time.Duration) []*entity.DueReminder {
	if len(plan.Reminders) == 0 || window <= 0 {
		return nil
	}

	var windows map[string]nodeWindow
	var due []*entity.DueReminder

	for _, rule := range plan.Reminders {
		if !rule.Enabled {
			continue
		}

		anchor := plan.StartAt
		target := fmt.Sprintf("plan %q", plan.Title)
		if rule.Trigger == entity.TriggerBeforeEnd || rule.Trigger == entity.TriggerOverdue {
			anchor = plan.EndAt
		}
		if rule.NodeID != "" && rule.Trigger != entity.TriggerOverdue {
			node := plan.NodeByID(rule.NodeID)
			if node == nil {
				continue
			}
			if windows == nil {
				windows = deriveNodeWindows(plan)
			}
			w := windows[rule.NodeID]
			if rule.Trigger == entity.TriggerBeforeStart {
				anchor = w.start
			} else {
				anchor = w.end
			}
			target = fmt.Sprintf("node %q", node.Name)
		}

		switch rule.Trigger {
		case entity.TriggerBeforeStart, entity.TriggerBeforeEnd:
			fireAt := anchor.Add(-rule.Offset)
			if now.Before(fireAt) || !now.Before(fireAt.Add(window)) {
				continue
			}
			due = append(due, &entity.DueReminder{
				RuleID:     rule.ID,
				PlanID:     plan.ID,
				TenantID:   plan.TenantID,
				PlanTitle:  plan.Title,
				OwnerID:    plan.OwnerID,
				Trigger:    rule.Trigger,
				Target:     target,
				TemplateID: rule.TemplateID,
				AnchorAt:   anchor,
				FireAt:     fireAt,
			})
		case entity.TriggerOverdue:
			if plan.Status.IsTerminal() || !now.After(plan.EndAt) {
				continue
			}
			due = append(due, &entity.DueReminder{
				RuleID:     rule.ID,
				PlanID:     plan.ID,
				TenantID:   plan.TenantID,
				PlanTitle:  plan.Title,
				OwnerID:    plan.OwnerID,
				Trigger:    rule.Trigger,
				Target:     target,
				TemplateID: rule.TemplateID,
				AnchorAt:   plan.EndAt,
				FireAt:     plan.EndAt,
			})
		}
	}
	return due
}
