package mail

import (
	"context"
	"log/slog"
)

// LogTransport はメールを送信せずにログへ出力する。開発環境向け。
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport はLogTransportを生成する。
func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Send はメールの宛先と件名をログに出力する。
func (t *LogTransport) Send(ctx context.Context, msg Message) error {
	t.logger.Info("メール送信（ログ出力のみ）",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}

// compile-time interface check
var (
	_ Transport = (*LogTransport)(nil)
	_ Transport = (*ResendTransport)(nil)
	_ Transport = (*KafkaTransport)(nil)
)
