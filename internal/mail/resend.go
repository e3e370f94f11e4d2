package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultResendEndpoint はResendのメール送信APIのエンドポイント。
const DefaultResendEndpoint = "https://api.resend.com/emails"

// ResendTransport はResendのHTTP APIでメールを送信する。
type ResendTransport struct {
	httpClient *http.Client
	apiKey     string
	endpoint   string
}

// NewResendTransport はResendTransportを生成する。
func NewResendTransport(httpClient *http.Client, apiKey string) *ResendTransport {
	return &ResendTransport{
		httpClient: httpClient,
		apiKey:     apiKey,
		endpoint:   DefaultResendEndpoint,
	}
}

// resendRequest はResendのメール送信リクエスト。
type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

// Send はメールを1通送信する。2xx以外の応答はエラーとする。
func (t *ResendTransport) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(resendRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call resend API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
