// Package notifier posts finished trading-calc jobs to a Telegram chat.
package notifier

import (
	"cmp"
	"context"
	"fmt"
	"html"
	"log/slog"
	"slices"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/samber/lo"

	"wfm_flipper/internal/config"
	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/pkg/contextx"
	"wfm_flipper/pkg/logx"
)

const defaultTopN = 5

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type TelegramBot struct {
	bot    *telego.Bot
	chatID int64
	topN   int
}

func NewTelegramBot(cfg config.Bot, opts ...telego.BotOption) (*TelegramBot, error) {
	bot, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	topN := cfg.TopN
	if topN <= 0 {
		topN = defaultTopN
	}

	return &TelegramBot{
		bot:    bot,
		chatID: cfg.ChatID,
		topN:   topN,
	}, nil
}

// Bot exposes the client so the command handler can share it.
func (b *TelegramBot) Bot() *telego.Bot {
	return b.bot
}

// Run sends a report for every job read from reports until ctx ends or the
// channel is closed.
func (b *TelegramBot) Run(ctx context.Context, reports <-chan entity.Job) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-reports:
			if !ok {
				return nil
			}

			if err := b.SendReport(ctx, job); err != nil {
				logger(ctx).Error("failed to send job report",
					slog.String(logx.FieldJobID, job.ID),
					logx.Error(err),
				)
			}
		}
	}
}

func (b *TelegramBot) SendReport(ctx context.Context, job entity.Job) error {
	msg := tu.Message(
		tu.ID(b.chatID),
		FormatReport(job, b.topN),
	).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// FormatReport renders the topN opportunities of job by net profit as HTML.
func FormatReport(job entity.Job, topN int) string {
	top := slices.Clone(job.Results)
	slices.SortStableFunc(top, func(a, b entity.Opportunity) int {
		return cmp.Compare(b.NetProfit, a.NetProfit)
	})

	if topN > 0 {
		top = lo.Slice(top, 0, topN)
	}

	var sb strings.Builder

	sb.WriteString("📈 <b>Trading scan finished</b>\n\n")
	fmt.Fprintf(&sb, "🔍 <b>Items scanned:</b> %d/%d\n", job.Progress, job.Total)
	fmt.Fprintf(&sb, "💡 <b>Opportunities:</b> %d\n", len(job.Results))

	if job.FailedItems > 0 {
		fmt.Fprintf(&sb, "⚠️ <b>Failed items:</b> %d\n", job.FailedItems)
	}

	sb.WriteString("\n")

	for i, o := range top {
		fmt.Fprintf(&sb,
			"%d. <b>%s</b>\n    buy %d → sell %d, profit <b>%d</b> (%.2f%%) x%d\n",
			i+1,
			html.EscapeString(o.ItemName),
			o.BuyPrice,
			o.SellPrice,
			o.NetProfit,
			o.ROI,
			o.Quantity,
		)
	}

	return strings.TrimRight(sb.String(), "\n")
}

