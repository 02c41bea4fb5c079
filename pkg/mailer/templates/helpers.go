package templates

import "time"

// Option pattern
type Option func(*EmailData)

func WithAppName(name string) Option { return func(d *EmailData) { d.AppName = name } }

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// NewEmailData builds the data for a message addressed to name <email>.
func NewEmailData(name, email string, opts ...Option) EmailData {
	d := EmailData{Name: name, Email: email, AppName: "Event Hub"}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// PlainMessage wraps an already written subject and body for the message layout.
func PlainMessage(email, subject, body string, opts ...Option) EmailData {
	d := NewEmailData("", email, opts...)
	d.Subject = subject
	d.Body = body
	return d
}
