package handler

import (
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"wfm_flipper/internal/transport/bot/view"
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.Status(h.limiter.Status(), h.session.Status()))
}

// OnJob shows the progress of one job: /job <id>.
func (h *Handler) OnJob(ctx *th.Context, msg telego.Message) error {
	jobID, ok := argument(msg.Text)
	if !ok {
		return h.sendHTML(ctx, msg.Chat.ID, view.JobMissingArgument)
	}

	job, err := h.jobs.Poll(jobID)
	if err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, view.JobNotFound)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.Job(job))
}

// OnCancel cancels one job, or every running job without an argument.
func (h *Handler) OnCancel(ctx *th.Context, msg telego.Message) error {
	jobID, ok := argument(msg.Text)
	if !ok {
		return h.sendHTML(ctx, msg.Chat.ID, view.CancelledAll(h.jobs.CancelAll()))
	}

	if err := h.jobs.Cancel(jobID); err != nil {
		return h.sendHTML(ctx, msg.Chat.ID, view.JobNotFound)
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.CancelRequested)
}

func argument(text string) (string, bool) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return "", false
	}

	return parts[1], true
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: telego.ModeHTML,
	})

	return err
}
