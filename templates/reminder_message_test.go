package templates

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsplan-service/pkg/logger"
)

func TestRender_BuiltInTemplates(t *testing.T) {
	renderer := NewReminderMessageRenderer(logger.NewNop())
	anchor := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	data := map[string]interface{}{
		"planTitle": "June inspection",
		"target":    "plan June inspection",
		"anchorAt":  anchor,
	}

	cases := []struct {
		templateID string
		subject    string
	}{
		{TemplateUpcomingStart, "Upcoming: June inspection"},
		{TemplateUpcomingEnd, "Deadline approaching: June inspection"},
		{TemplateOverdue, "Overdue: June inspection"},
		{TemplateDefault, "Reminder: June inspection"},
		{"", "Reminder: June inspection"},
	}
	for _, tc := range cases {
		message, err := renderer.Render(context.Background(), tc.templateID, data)
		require.NoError(t, err)
		assert.Equal(t, tc.subject, message.Subject)
		assert.Contains(t, message.Body, anchor.Format(time.RFC1123))
	}
}

func TestRender_UnknownTemplateFallsBack(t *testing.T) {
	renderer := NewReminderMessageRenderer(logger.NewNop())

	message, err := renderer.Render(context.Background(), "reminder.custom", map[string]interface{}{
		"planTitle": "June inspection",
	})
	require.NoError(t, err)
	assert.Equal(t, "Reminder: June inspection", message.Subject)
}

func TestRender_MissingFields(t *testing.T) {
	renderer := NewReminderMessageRenderer(logger.NewNop())

	message, err := renderer.Render(context.Background(), TemplateDefault, map[string]interface{}{})
	require.NoError(t, err)
	assert.NotEmpty(t, message.Body)
}
