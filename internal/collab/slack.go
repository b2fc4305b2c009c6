package collab

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slack-go/slack"

	"github.com/ai-shine/scraping-engine/internal/engine"
)

// statusEmoji maps run statuses to progress-thread emoji.
var statusEmoji = map[string]string{
	engine.StatusPending:   ":hourglass:",
	engine.StatusSearching: ":mag:",
	engine.StatusScraping:  ":spider_web:",
	engine.StatusSaving:    ":floppy_disk:",
	engine.StatusCompleted: ":white_check_mark:",
	engine.StatusFailed:    ":x:",
}

// SlackNotifier posts progress, results, and the CSV artifact into a Slack
// thread. A nil notifier is safe to use everywhere.
type SlackNotifier struct {
	client   *slack.Client
	channel  string
	threadTS string
	keyword  string
}

// NewSlackNotifier builds a notifier for one run's thread. Returns nil when
// the token is empty, which disables notification.
func NewSlackNotifier(token, channel, threadTS, keyword string) *SlackNotifier {
	if token == "" || channel == "" {
		return nil
	}
	return &SlackNotifier{
		client:   slack.New(token),
		channel:  channel,
		threadTS: threadTS,
		keyword:  keyword,
	}
}

func (n *SlackNotifier) postText(text string) {
	if n == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if n.threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(n.threadTS))
	}
	if _, _, err := n.client.PostMessageContext(ctx, n.channel, opts...); err != nil {
		slog.Error("slack post failed", slog.Any("error", err))
	}
}

// OnStatus posts a one-line progress update into the thread.
func (n *SlackNotifier) OnStatus(status string, progress int, message string) {
	if n == nil {
		return
	}
	emoji := statusEmoji[status]
	if emoji == "" {
		emoji = ":information_source:"
	}
	n.postText(fmt.Sprintf("%s [%s] %s (%d%%)", emoji, status, message, progress))
}

// OnFinal posts the completion summary and uploads the result CSV.
func (n *SlackNotifier) OnFinal(records []engine.EnrichedRecord, spreadsheetURL string) {
	if n == nil {
		return
	}
	contactCount := 0
	for _, r := range records {
		if r.HasContact() {
			contactCount++
		}
	}

	text := fmt.Sprintf(":white_check_mark: 完了しました！%d社のリストを作成しました", len(records))
	if contactCount < len(records) {
		text = fmt.Sprintf(":white_check_mark: 完了しました！%d社のリストを作成しました（連絡先あり: %d社）", len(records), contactCount)
	}
	if spreadsheetURL != "" {
		text += "\n\n:bar_chart: Googleスプレッドシートも作成しました！\n" + spreadsheetURL
	}
	n.postText(text)

	if len(records) > 0 {
		n.uploadCSV(records)
	}
}

// OnError posts a failure notice into the thread.
func (n *SlackNotifier) OnError(message string) {
	if n == nil {
		return
	}
	n.postText(fmt.Sprintf(":x: *エラーが発生しました*\n```%s```", message))
}

func (n *SlackNotifier) uploadCSV(records []engine.EnrichedRecord) {
	data, err := engine.BuildCSV(records)
	if err != nil {
		slog.Error("csv build failed", slog.Any("error", err))
		return
	}
	filename := engine.CSVFileName(time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	_, err = n.client.UploadFileContext(ctx, slack.UploadFileParameters{
		Reader:          bytes.NewReader(data),
		Filename:        filename,
		FileSize:        len(data),
		Title:           fmt.Sprintf("営業リスト: %s", n.keyword),
		Channel:         n.channel,
		ThreadTimestamp: n.threadTS,
	})
	if err != nil {
		slog.Error("slack upload failed", slog.Any("error", err))
		return
	}
	slog.Info("csv uploaded to slack", slog.String("filename", filename))
}
