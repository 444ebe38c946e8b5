// Package mail sends transactional e-mail.
//
// Build a message fluently and hand it to a Mailer:
//
//	msg := mail.To(user.Email).
//	    Subject("Welcome to Kapee").
//	    Template(welcomeTmpl, user)
//	err := mailer.Send(ctx, msg)
//
// NewFromConfig returns an SMTP mailer when MAIL_USERNAME is set and a
// LogMailer otherwise, so local runs never need an SMTP server.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"

	"github.com/shashiranjanraj/kapee/config"
	"github.com/shashiranjanraj/kapee/pkg/logger"
)

// Mailer delivers a message.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPConfig holds connection credentials.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// ConfigFromEnv reads MAIL_* settings.
func ConfigFromEnv() SMTPConfig {
	return SMTPConfig{
		Host:     config.Get("MAIL_HOST", "smtp.mailtrap.io"),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "hello@kapee.shop"),
		FromName: config.Get("MAIL_FROM_NAME", "Kapee"),
	}
}

// NewFromConfig picks SMTP when credentials are configured.
func NewFromConfig() Mailer {
	cfg := ConfigFromEnv()
	if cfg.Username == "" {
		return LogMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

// Message is a fluent builder for an e-mail.
type Message struct {
	to      []string
	subject string
	body    string
	isHTML  bool
	err     error
}

// To starts a message for the given recipients.
func To(addresses ...string) *Message {
	return &Message{to: addresses, isHTML: true}
}

func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets an HTML body.
func (m *Message) Body(html string) *Message {
	m.body = html
	m.isHTML = true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.body = text
	m.isHTML = false
	return m
}

// Template renders tmpl with data as the HTML body. A render error is
// reported by Send.
func (m *Message) Template(tmpl *template.Template, data any) *Message {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		m.err = fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
		return m
	}
	m.body = buf.String()
	m.isHTML = true
	return m
}

func (m *Message) Recipients() []string { return m.to }
func (m *Message) SubjectLine() string  { return m.subject }
func (m *Message) Content() string      { return m.body }

func (m *Message) validate() error {
	if m.err != nil {
		return m.err
	}
	if len(m.to) == 0 {
		return fmt.Errorf("mail: no recipients")
	}
	for _, addr := range m.to {
		if strings.ContainsAny(addr, "\r\n") {
			return fmt.Errorf("mail: invalid recipient %q", addr)
		}
	}
	if strings.ContainsAny(m.subject, "\r\n") {
		return fmt.Errorf("mail: subject contains a line break")
	}
	return nil
}

func (m *Message) raw(from string) []byte {
	contentType := "text/plain"
	if m.isHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	b.WriteString("Subject: " + m.subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"UTF-8\"\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(m.body)
	return []byte(b.String())
}

// SMTPMailer delivers over SMTP: implicit TLS on port 465, STARTTLS otherwise.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers msg. ctx bounds the dial; net/smtp has no per-command
// deadlines beyond that.
func (s *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	from := fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	var conn net.Conn
	var err error
	if s.cfg.Port == "465" {
		dialer := &tls.Dialer{Config: &tls.Config{ServerName: s.cfg.Host}}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mail: handshake: %w", err)
	}
	defer client.Close()

	if s.cfg.Port != "465" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
				return fmt.Errorf("mail: starttls: %w", err)
			}
		}
	}
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("mail: auth: %w", err)
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range msg.to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg.raw(from)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg *Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("mail (not sent)",
		"to", strings.Join(msg.to, ","),
		"subject", msg.subject,
	)
	return nil
}
