package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templates embed.FS

var followUpTemplate = template.Must(template.ParseFS(templates, "templates/follow_up.html"))

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From      string
	Signature string
	dialer    Dialer
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		From:      from,
		Signature: "Sent from the lead dashboard",
		dialer:    gomail.NewDialer(host, port, user, password),
	}
}

// NewEmailSenderWithDialer lets callers swap the SMTP transport.
func NewEmailSenderWithDialer(d Dialer, from string) *EmailSender {
	return &EmailSender{From: from, Signature: "Sent from the lead dashboard", dialer: d}
}

func (s *EmailSender) SendFollowUp(to, name, subject, content string) error {
	m, err := s.buildFollowUp(to, name, subject, content)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send follow-up over SMTP: %w", err)
	}
	return nil
}

func (s *EmailSender) buildFollowUp(to, name, subject, content string) (*gomail.Message, error) {
	if name == "" {
		name = "there"
	}
	if subject == "" {
		subject = fmt.Sprintf("Following up, %s", name)
	}

	data := FollowUpEmailData{
		Name:       name,
		Paragraphs: paragraphs(content),
		Signature:  s.Signature,
	}

	var body bytes.Buffer
	if err := followUpTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("render follow-up template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)
	m.AddAlternative("text/html", body.String())
	return m, nil
}

func paragraphs(content string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
