package usecase

import (
	"context"
	"time"

	"opsplan-service/internal/domain/repository"
	"opsplan-service/pkg/logger"
	"opsplan-service/pkg/metrics"
)

// ReminderDispatcher periodically evaluates due reminders and delivers
// them. The evaluator itself is pure; this loop owns the evaluation
// watermark, so the window handed to each pass is exactly the interval
// since the previous pass and BEFORE_* reminders are neither missed nor
// duplicated under regular ticking. OVERDUE reminders re-fire every pass
// until the plan terminates; a durable notification ledger would sit in
// front of the notifier if that ever needs suppressing.
type ReminderDispatcher struct {
	service   *PlanService
	templates repository.TemplateRenderer
	notifier  repository.NotifierRepository
	logger    logger.Logger
	metrics   *metrics.Metrics
	interval  time.Duration
}

// NewReminderDispatcher creates a new reminder dispatcher
func NewReminderDispatcher(
	service *PlanService,
	templates repository.TemplateRenderer,
	notifier repository.NotifierRepository,
	log logger.Logger,
	m *metrics.Metrics,
	interval time.Duration,
) *ReminderDispatcher {
	return &ReminderDispatcher{
		service:   service,
		templates: templates,
		notifier:  notifier,
		logger:    log,
		metrics:   m,
		interval:  interval,
	}
}

// Run evaluates and dispatches reminders until the context is cancelled
func (d *ReminderDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	lastRun := time.Now()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Reminder dispatcher stopped")
			return
		case now := <-ticker.C:
			d.DispatchOnce(ctx, now, now.Sub(lastRun))
			lastRun = now
		}
	}
}

// DispatchOnce runs one evaluation pass over all tenants with the given
// window and delivers everything found due.
func (d *ReminderDispatcher) DispatchOnce(ctx context.Context, now time.Time, window time.Duration) {
	due, err := d.service.DueReminders(ctx, "", now, window)
	if err != nil {
		d.logger.Error("Failed to evaluate reminders", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}
	d.logger.Info("Dispatching due reminders", "count", len(due))

	for _, reminder := range due {
		message, err := d.templates.Render(ctx, reminder.TemplateID, map[string]interface{}{
			"planId":    reminder.PlanID,
			"planTitle": reminder.PlanTitle,
			"target":    reminder.Target,
			"trigger":   string(reminder.Trigger),
			"anchorAt":  reminder.AnchorAt,
		})
		if err != nil {
			d.logger.Error("Failed to render reminder template",
				"templateId", reminder.TemplateID, "ruleId", reminder.RuleID, "error", err)
			d.metrics.ErrorsCount.WithLabelValues("render_reminder").Inc()
			continue
		}
		if err := d.notifier.SendReminder(ctx, reminder.OwnerID, message); err != nil {
			d.logger.Error("Failed to deliver reminder",
				"ruleId", reminder.RuleID, "recipient", reminder.OwnerID, "error", err)
			d.metrics.ErrorsCount.WithLabelValues("send_reminder").Inc()
			continue
		}
		d.metrics.RemindersDispatched.Inc()
	}
}
