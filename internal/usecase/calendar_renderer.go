package usecase

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"opsplan-service/internal/domain/entity"
)

const (
	icsTimeLayout = "20060102T150405Z"
	icsProdID     = "-//opsplan//opsplan-service//EN"
	// RFC 5545 content lines may not exceed 75 octets before folding.
	icsLineLimit = 75
)

// RenderCalendar serializes the tenant's plans as an iCalendar feed: one
// VEVENT per plan with UTC start/end, the plan title as summary, and a
// description listing the node names in tree order. The UID is derived from
// the plan id alone, so re-rendering an unchanged plan yields the same
// identifier and calendar clients deduplicate on refresh. Plans without
// nodes still render with an empty description.
func RenderCalendar(tenantID string, plans []*entity.Plan, now time.Time) string {
	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:"+icsProdID)
	writeLine(&b, "CALSCALE:GREGORIAN")
	writeLine(&b, "X-WR-CALNAME:"+escapeText("Plans "+tenantID))

	stamp := now.UTC().Format(icsTimeLayout)
	for _, plan := range plans {
		writeLine(&b, "BEGIN:VEVENT")
		writeLine(&b, "UID:"+CalendarUID(plan.ID))
		writeLine(&b, "DTSTAMP:"+stamp)
		writeLine(&b, "DTSTART:"+plan.StartAt.UTC().Format(icsTimeLayout))
		writeLine(&b, "DTEND:"+plan.EndAt.UTC().Format(icsTimeLayout))
		writeLine(&b, "SUMMARY:"+escapeText(plan.Title))
		if desc := planDescription(plan); desc != "" {
			writeLine(&b, "DESCRIPTION:"+desc)
		}
		if plan.Timezone != "" {
			writeLine(&b, "X-OPSPLAN-TZ:"+escapeText(plan.Timezone))
		}
		writeLine(&b, "STATUS:"+eventStatus(plan.Status))
		writeLine(&b, "END:VEVENT")
	}

	writeLine(&b, "END:VCALENDAR")
	return b.String()
}

// CalendarUID derives the stable event UID for a plan
func CalendarUID(planID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("opsplan:plan:"+planID)).String() + "@opsplan"
}

func planDescription(plan *entity.Plan) string {
	tree, err := BuildPlanTree(plan.Nodes)
	if err != nil {
		return ""
	}
	names := make([]string, 0, tree.Len())
	for _, n := range tree.Flatten() {
		names = append(names, n.Name)
	}
	return escapeText(strings.Join(names, "\n"))
}

func eventStatus(status entity.PlanStatus) string {
	switch status {
	case entity.PlanStatusCancelled:
		return "CANCELLED"
	case entity.PlanStatusDraft, entity.PlanStatusDesign:
		return "TENTATIVE"
	default:
		return "CONFIRMED"
	}
}

// escapeText applies RFC 5545 text escaping
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}

// writeLine emits one content line, folded at the 75-octet limit with
// CRLF + space continuations. Folds land on rune boundaries so multi-byte
// text is never split mid-character.
func writeLine(b *strings.Builder, line string) {
	limit := icsLineLimit
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// Continuation lines lose one octet to the leading space.
		limit = icsLineLimit - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func isRuneStart(c byte) bool {
	return c&0xC0 != 0x80
}

// CalendarContentType is the media type of the rendered feed
const CalendarContentType = "text/calendar; charset=utf-8"
