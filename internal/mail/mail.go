// Package mail はリマインダーメールの生成と配信経路（Resend、Kafka、ログ出力）を提供する。
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/contesthub/internal/model"
)

// DefaultFrom は送信元アドレスの既定値。
const DefaultFrom = "onboarding@resend.dev"

// Message は送信するメール1通。
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Transport はメールの配信経路。
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier はリマインダーからメールを生成して配信経路に渡す。
type Notifier struct {
	transport Transport
	from      string
	logger    *slog.Logger
}

// NewNotifier はNotifierを生成する。fromが空の場合は DefaultFrom を使う。
func NewNotifier(transport Transport, from string, logger *slog.Logger) *Notifier {
	if from == "" {
		from = DefaultFrom
	}
	return &Notifier{transport: transport, from: from, logger: logger}
}

// NotifyReminder はリマインダーメールを1通送信する。
func (n *Notifier) NotifyReminder(ctx context.Context, r *model.Reminder) error {
	msg, err := BuildReminderMessage(r, n.from)
	if err != nil {
		return err
	}
	if err := n.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send reminder mail: %w", err)
	}

	n.logger.Info("リマインダーメールを送信しました",
		slog.String("reminder_id", r.ID),
		slog.String("contest_name", r.ContestName),
	)
	return nil
}
