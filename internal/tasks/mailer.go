package tasks

import (
	"bytes"
	"fmt"
	"net/smtp"
	"text/template"

	"github.com/raminkz/gotodo/pkg/config"
)

var activationTmpl = template.Must(template.New("activation").Parse(
	`Subject: Activate your account
From: {{.From}}
To: {{.To}}

Welcome! Confirm your email address by opening the link below:

{{.BaseURL}}/api/v1/activation/confirm/{{.Token}}
`))

var resetTmpl = template.Must(template.New("reset").Parse(
	`Subject: Reset your password
From: {{.From}}
To: {{.To}}

Use the link below to reset your password. The link expires shortly.

{{.BaseURL}}/api/v1/reset-password/{{.Token}}
`))

type mailContext struct {
	From    string
	To      string
	BaseURL string
	Token   string
}

// Mailer renders the templated bodies and pushes them over SMTP. It runs
// inside the worker only.
type Mailer struct {
	cfg     config.MailConfig
	baseURL string
}

func NewMailer(cfg config.MailConfig, baseURL string) *Mailer {
	return &Mailer{cfg: cfg, baseURL: baseURL}
}

func (m *Mailer) SendActivationMail(to, token string) error {
	return m.send(activationTmpl, to, token)
}

func (m *Mailer) SendResetMail(to, token string) error {
	return m.send(resetTmpl, to, token)
}

func (m *Mailer) send(tmpl *template.Template, to, token string) error {
	var body bytes.Buffer
	err := tmpl.Execute(&body, mailContext{
		From:    m.cfg.From,
		To:      to,
		BaseURL: m.baseURL,
		Token:   token,
	})
	if err != nil {
		return fmt.Errorf("rendering mail body: %w", err)
	}

	var a smtp.Auth
	if m.cfg.Username != "" {
		a = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(m.cfg.Addr(), a, m.cfg.From, []string{to}, body.Bytes()); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}
