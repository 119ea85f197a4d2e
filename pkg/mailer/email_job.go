package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mailtpl "github.com/noorfaiz5/Book-worm-hub/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (with Data) or Subject plus Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome" or "challenge_completed"
	Data     map[string]any `json:"data,omitempty"`
}

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// ErrBadJob marks a message that can never be delivered and must not be requeued.
var ErrBadJob = errors.New("bad email job")

// Handle decodes one queued job, renders it and hands it to s.
// Errors wrapping ErrBadJob are permanent; any other error is worth a retry.
func Handle(ctx context.Context, s Sender, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: %v", ErrBadJob, err)
	}
	if strings.TrimSpace(job.To) == "" {
		return fmt.Errorf("%w: missing recipient", ErrBadJob)
	}
	ensureRecipient(&job)

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !mailtpl.Known(job.Template) {
			return fmt.Errorf("%w: unknown template %q", ErrBadJob, job.Template)
		}
		var err error
		subject, text, html, err = mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: render %s: %v", ErrBadJob, job.Template, err)
		}
	}
	if subject == "" || (text == "" && html == "") {
		return fmt.Errorf("%w: empty message", ErrBadJob)
	}
	return s.Send(ctx, job.To, subject, text, html)
}

func ensureRecipient(job *EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
}
