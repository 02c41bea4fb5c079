package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/oksasatya/go-ddd-event-hub/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Text is required; HTML is rendered from the message layout when empty.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject,omitempty"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// ErrBadJob marks a payload that will never succeed and must not be retried.
var ErrBadJob = errors.New("bad email job")

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// DecodeJob parses a queue message body.
func DecodeJob(body []byte) (EmailJob, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return EmailJob{}, errors.Join(ErrBadJob, err)
	}
	job.To = strings.TrimSpace(job.To)
	if job.To == "" {
		return EmailJob{}, errors.Join(ErrBadJob, errors.New("missing recipient"))
	}
	return job, nil
}

// Render fills in the HTML body from the text when the job has none.
func (j EmailJob) Render() (EmailJob, error) {
	if j.HTML != "" || j.Text == "" {
		return j, nil
	}
	html, err := templates.RenderHTML(templates.Message, templates.PlainMessage(j.To, j.Subject, j.Text))
	if err != nil {
		return j, errors.Join(ErrBadJob, err)
	}
	j.HTML = html
	return j, nil
}

// Deliver renders and sends a job. Errors wrapping ErrBadJob are permanent.
func Deliver(ctx context.Context, s Sender, job EmailJob) error {
	job, err := job.Render()
	if err != nil {
		return err
	}
	return s.Send(ctx, job.To, job.Subject, job.Text, job.HTML)
}
