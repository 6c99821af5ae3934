// Package mailer delivers one-time verification codes over SMTP.
package mailer

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/minitrello/minitrello/internal/common/config"
	"github.com/minitrello/minitrello/internal/common/logger"
)

// Sender dispatches a verification code to an email address.
type Sender interface {
	SendVerificationCode(email, code string) error
}

// SMTPSender sends verification emails through a configured SMTP relay.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *logger.Logger
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates an SMTP-backed sender.
func NewSMTPSender(cfg config.SMTPConfig, log *logger.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		logger: log.WithFields(zap.String("component", "mailer")),
	}
}

// SendVerificationCode emails the code to the given address.
func (s *SMTPSender) SendVerificationCode(email, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your Mini Trello verification code")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your verification code is %s. It expires in 5 minutes.", code))
	msg.AddAlternative("text/html", fmt.Sprintf(
		"<p>Your verification code is <strong>%s</strong>.</p><p>It expires in 5 minutes.</p>", code))

	dialer := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	s.logger.Debug("verification code sent", zap.String("email", email))
	return nil
}

// LogSender writes codes to the log instead of sending email. Used in
// development when no SMTP relay is configured.
type LogSender struct {
	logger *logger.Logger
}

var _ Sender = (*LogSender)(nil)

// NewLogSender creates a sender that only logs codes.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{logger: log.WithFields(zap.String("component", "mailer"))}
}

// SendVerificationCode logs the code at warn level so it is visible in
// development output.
func (s *LogSender) SendVerificationCode(email, code string) error {
	s.logger.Warn("smtp not configured, logging verification code",
		zap.String("email", email),
		zap.String("code", code))
	return nil
}

// Provide returns an SMTP sender when a relay host is configured and a
// log-only sender otherwise.
func Provide(cfg config.SMTPConfig, log *logger.Logger) Sender {
	if cfg.Host == "" {
		return NewLogSender(log)
	}
	return NewSMTPSender(cfg, log)
}
