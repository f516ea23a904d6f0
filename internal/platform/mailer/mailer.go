// Package mailer delivers one-time codes by email.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Purpose selects the wording of an OTP email.
type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposeTwoFactor     Purpose = "two_factor"
	PurposePasswordReset Purpose = "password_reset"
)

// OTPMessage renders the plain-text code email.
func OTPMessage(p Purpose, to, name, code string, ttl time.Duration) Message {
	var subject, intro string
	switch p {
	case PurposeTwoFactor:
		subject = "Your sign-in code"
		intro = "Use this code to finish signing in."
	case PurposePasswordReset:
		subject = "Reset your password"
		intro = "Use this code to reset your password."
	default:
		subject = "Verify your email"
		intro = "Use this code to confirm your email address."
	}
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n%s\r\n\r\n    %s\r\n\r\n", name, intro, code)
	fmt.Fprintf(&b, "The code expires in %d minutes. If you did not ask for it, ignore this email.\r\n", int(ttl.Minutes()))
	return Message{To: to, Subject: subject, Body: b.String()}
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends through a relay using PLAIN auth when credentials are
// configured.
type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, m.format(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) format(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// LogMailer writes messages to the log instead of sending them. For local
// development only: the body contains the code.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail not sent (log mailer)")
	return nil
}
