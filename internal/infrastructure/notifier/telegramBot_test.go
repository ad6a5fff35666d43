package notifier_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/require"

	"wfm_flipper/internal/config"
	"wfm_flipper/internal/domain/entity"
	"wfm_flipper/internal/infrastructure/notifier"
)

const testToken = "123456789:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func job() entity.Job {
	return entity.Job{
		ID:          "job-1",
		Status:      entity.JobStatusDone,
		Progress:    12,
		Total:       12,
		FailedItems: 1,
		Results: []entity.Opportunity{
			{ItemName: "Ash Prime Set", BuyPrice: 41, SellPrice: 49, NetProfit: 8, Quantity: 1, ROI: 19.51},
			{ItemName: "Rhino <Prime> Set", BuyPrice: 30, SellPrice: 60, NetProfit: 30, Quantity: 2, ROI: 100},
			{ItemName: "Nova Prime Set", BuyPrice: 20, SellPrice: 35, NetProfit: 15, Quantity: 1, ROI: 75},
		},
	}
}

func TestFormatReport(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name     string
		topN     int
		contains []string
		missing  []string
	}{
		{
			name: "Top two by profit",
			topN: 2,
			contains: []string{
				"Items scanned:</b> 12/12",
				"Opportunities:</b> 3",
				"Failed items:</b> 1",
				"1. <b>Rhino &lt;Prime&gt; Set</b>",
				"2. <b>Nova Prime Set</b>",
				"profit <b>30</b> (100.00%) x2",
			},
			missing: []string{"Ash Prime Set"},
		},
		{
			name:     "All opportunities",
			topN:     0,
			contains: []string{"3. <b>Ash Prime Set</b>", "buy 41 → sell 49"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			text := notifier.FormatReport(job(), tc.topN)

			for _, s := range tc.contains {
				rq.Contains(text, s)
			}

			for _, s := range tc.missing {
				rq.NotContains(text, s)
			}
		})
	}
}

func TestSendReport(t *testing.T) {
	rq := require.New(t)

	received := make(chan string, 1)

	httpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			received <- string(body)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`))
	}))
	defer httpServer.Close()

	bot, err := notifier.NewTelegramBot(
		config.Bot{Token: testToken, ChatID: 42, TopN: 1},
		telego.WithAPIServer(httpServer.URL),
		telego.WithDiscardLogger(),
	)
	rq.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reports := make(chan entity.Job, 1)
	done := make(chan error, 1)

	go func() { done <- bot.Run(ctx, reports) }()

	reports <- job()

	select {
	case body := <-received:
		rq.Contains(body, `"chat_id":42`)
		rq.Contains(body, `"parse_mode":"HTML"`)
		rq.Contains(body, "Rhino")
		rq.NotContains(body, "Nova Prime Set")
	case <-time.After(5 * time.Second):
		rq.Fail("message was not sent")
	}

	close(reports)
	rq.NoError(<-done)
}

func TestNewTelegramBotInvalidToken(t *testing.T) {
	rq := require.New(t)

	_, err := notifier.NewTelegramBot(config.Bot{Token: "not-a-token", ChatID: 1})
	rq.Error(err)
}
