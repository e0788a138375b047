package templates

import (
	"context"
	"fmt"
	"time"

	"opsplan-service/internal/domain/entity"
	"opsplan-service/internal/domain/repository"
	"opsplan-service/pkg/logger"
)

// Template reference ids understood by the built-in renderer. Rules created
// without a template fall back to the default.
const (
	TemplateDefault       = "reminder.default"
	TemplateUpcomingStart = "reminder.upcoming_start"
	TemplateUpcomingEnd   = "reminder.upcoming_end"
	TemplateOverdue       = "reminder.overdue"
)

// ReminderMessageRenderer implements the TemplateRenderer interface with a
// fixed set of built-in reminder templates. The full template-management
// subsystem lives outside this service; this renderer covers the reminder
// templates the dispatcher needs.
type ReminderMessageRenderer struct {
	logger logger.Logger
}

// NewReminderMessageRenderer creates a new reminder message renderer
func NewReminderMessageRenderer(log logger.Logger) repository.TemplateRenderer {
	return &ReminderMessageRenderer{
		logger: log,
	}
}

// Render produces the subject and body for a reminder template. The context
// map carries planTitle, target, trigger, and anchorAt as written by the
// dispatcher.
func (r *ReminderMessageRenderer) Render(ctx context.Context, templateID string, data map[string]interface{}) (*entity.RenderedMessage, error) {
	planTitle := stringValue(data, "planTitle")
	target := stringValue(data, "target")
	anchor := timeValue(data, "anchorAt")

	switch templateID {
	case TemplateUpcomingStart:
		return &entity.RenderedMessage{
			Subject: fmt.Sprintf("Upcoming: %s", planTitle),
			Body:    fmt.Sprintf("%s is scheduled to start at %s.", target, anchor.Format(time.RFC1123)),
		}, nil
	case TemplateUpcomingEnd:
		return &entity.RenderedMessage{
			Subject: fmt.Sprintf("Deadline approaching: %s", planTitle),
			Body:    fmt.Sprintf("%s is due to finish at %s.", target, anchor.Format(time.RFC1123)),
		}, nil
	case TemplateOverdue:
		return &entity.RenderedMessage{
			Subject: fmt.Sprintf("Overdue: %s", planTitle),
			Body:    fmt.Sprintf("%s passed its scheduled end at %s and is still open.", target, anchor.Format(time.RFC1123)),
		}, nil
	case TemplateDefault, "":
		return &entity.RenderedMessage{
			Subject: fmt.Sprintf("Reminder: %s", planTitle),
			Body:    fmt.Sprintf("Reminder for %s (scheduled %s).", target, anchor.Format(time.RFC1123)),
		}, nil
	default:
		r.logger.Warn("Unknown template id, using default", "templateId", templateID)
		return &entity.RenderedMessage{
			Subject: fmt.Sprintf("Reminder: %s", planTitle),
			Body:    fmt.Sprintf("Reminder for %s (scheduled %s).", target, anchor.Format(time.RFC1123)),
		}, nil
	}
}

func stringValue(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func timeValue(m map[string]interface{}, key string) time.Time {
	if v, ok := m[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}
