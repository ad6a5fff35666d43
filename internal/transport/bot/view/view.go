// Package view renders the bot's HTML replies.
package view

import (
	"fmt"
	"strings"
	"time"

	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/internal/infrastructure/ratelimit"
)

const (
	StartMessage = "👋 <b>Warframe Market flipper</b>\n\n" +
		"/status - limiter and session state\n" +
		"/job <code>ID</code> - job progress\n" +
		"/cancel [<code>ID</code>] - cancel one job or all of them"

	JobMissingArgument = "❌ Usage: /job <code>ID</code>"
	JobNotFound        = "❌ Job not found"
	CancelRequested    = "🛑 Cancellation requested"
)

func Status(limiter ratelimit.Status, session entity.SessionStatus) string {
	var sb strings.Builder

	sb.WriteString("📊 <b>Status</b>\n\n")
	fmt.Fprintf(&sb, "🚦 <b>Requests:</b> %d/%d active, %d/%d in window\n",
		limiter.ActiveRequests, limiter.MaxConcurrent,
		limiter.RequestsInWindow, limiter.RequestsPerSecond,
	)

	if limiter.CooldownRemaining > 0 {
		fmt.Fprintf(&sb, "⏳ <b>Cooldown:</b> %s left\n", limiter.CooldownRemaining.Round(time.Second))
	} else {
		sb.WriteString("✅ <b>Cooldown:</b> none\n")
	}

	if session.LoggedIn {
		fmt.Fprintf(&sb, "👤 <b>Session:</b> %s until %s",
			session.Username, session.ExpiresAt.UTC().Format(time.RFC3339))
	} else {
		sb.WriteString("👤 <b>Session:</b> logged out")
	}

	return sb.String()
}

func Job(job entity.Job) string {
	text := fmt.Sprintf("🔍 <b>Job</b> <code>%s</code>\n\n<b>Status:</b> %s\n<b>Progress:</b> %d/%d\n<b>Opportunities:</b> %d",
		job.ID, job.Status, job.Progress, job.Total, len(job.Results))

	if job.FailedItems > 0 {
		text += fmt.Sprintf("\n<b>Failed items:</b> %d", job.FailedItems)
	}

	return text
}

func CancelledAll(count int) string {
	if count == 0 {
		return "ℹ️ No running jobs"
	}

	return fmt.Sprintf("🛑 Cancelled %d job(s)", count)
}
