package mailer

import (
	"bytes"
	"context"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/go-mail/mail/v2"
)

//go:embed "templates"
var templateFS embed.FS

const (
	sendAttempts = 3
	dialTimeout  = 5 * time.Second
	retryDelay   = 500 * time.Millisecond
)

type SMTPMailer struct {
	dialer *mail.Dialer
	sender string
}

func NewSMTPMailer(host string, port int, username, password, sender string) *SMTPMailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = dialTimeout

	return &SMTPMailer{
		dialer: dialer,
		sender: sender,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, recipient, templateFile string, data any) error {
	email, err := render(templateFile, data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", email.subject)
	msg.SetBody("text/plain", email.plainBody)
	msg.AddAlternative("text/html", email.htmlBody)

	for i := 1; i <= sendAttempts; i++ {
		timeout, ok := attemptTimeout(ctx, m.dialer.Timeout)
		if !ok {
			return ctx.Err()
		}

		dialer := *m.dialer
		dialer.Timeout = timeout

		err = dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}

		if i < sendAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}

	return err
}

// attemptTimeout caps d by the time left on ctx. It reports false once ctx is
// done or its deadline has passed.
func attemptTimeout(ctx context.Context, d time.Duration) (time.Duration, bool) {
	if ctx.Err() != nil {
		return 0, false
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		return d, true
	}

	left := time.Until(deadline)
	if left <= 0 {
		return 0, false
	}

	return min(d, left), true
}

type renderedEmail struct {
	subject   string
	plainBody string
	htmlBody  string
}

func render(templateFile string, data any) (renderedEmail, error) {
	textTmpl, err := texttemplate.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return renderedEmail{}, err
	}

	subject := new(bytes.Buffer)
	err = textTmpl.ExecuteTemplate(subject, "subject", data)
	if err != nil {
		return renderedEmail{}, err
	}

	plainBody := new(bytes.Buffer)
	err = textTmpl.ExecuteTemplate(plainBody, "plainBody", data)
	if err != nil {
		return renderedEmail{}, err
	}

	htmlTmpl, err := htmltemplate.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return renderedEmail{}, err
	}

	htmlBody := new(bytes.Buffer)
	err = htmlTmpl.ExecuteTemplate(htmlBody, "htmlBody", data)
	if err != nil {
		return renderedEmail{}, err
	}

	return renderedEmail{
		subject:   subject.String(),
		plainBody: plainBody.String(),
		htmlBody:  htmlBody.String(),
	}, nil
}
