package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/hitoshi/contesthub/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var reminderTemplate = template.Must(template.ParseFS(templateFS, "templates/reminder.html"))

// reminderView はリマインダーメールのテンプレートに渡す値。
type reminderView struct {
	ContestName  string
	ContestDate  string
	ContestTime  string
	NotifyBefore string
	ContestURL   string
}

// ReminderSubject はリマインダーメールの件名を返す。
func ReminderSubject(r *model.Reminder) string {
	return fmt.Sprintf("ContestHub Reminder: %s starting %s!", r.ContestName, r.NotifyBefore)
}

// BuildReminderMessage はリマインダーからHTML本文とテキスト本文を持つメールを組み立てる。
func BuildReminderMessage(r *model.Reminder, from string) (Message, error) {
	var buf bytes.Buffer
	err := reminderTemplate.Execute(&buf, reminderView{
		ContestName:  r.ContestName,
		ContestDate:  r.ContestDate,
		ContestTime:  r.ContestTime,
		NotifyBefore: r.NotifyBefore,
		ContestURL:   r.ContestURL,
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to render reminder mail: %w", err)
	}

	body := buf.String()
	return Message{
		From:    from,
		To:      r.UserEmail,
		Subject: ReminderSubject(r),
		HTML:    body,
		Text:    HTMLToText(body),
	}, nil
}
