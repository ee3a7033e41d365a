package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bruinwatch/bruinwatch-api/pkg/errors"
)

// SMTPSender sends email alerts through an SMTP relay with STARTTLS,
// authenticated with an app password (the Gmail model).
type SMTPSender struct {
	logger   *zap.Logger
	host     string
	port     int
	sender   string
	password string
	timeout  time.Duration
}

// NewSMTPSender creates an email sender. sender and password must both be set
// or Send fails before dialing.
func NewSMTPSender(host string, port int, sender, password string, timeout time.Duration, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		logger:   logger,
		host:     host,
		port:     port,
		sender:   sender,
		password: password,
		timeout:  timeout,
	}
}

// Send delivers message to the given address and returns a synthetic
// reference of the form "email:<unix-timestamp>".
func (s *SMTPSender) Send(ctx context.Context, to, message string) (string, error) {
	if s.sender == "" || s.password == "" {
		return "", errors.Clone(errors.ErrTransport,
			"missing SMTP config: set GMAIL_SENDER and GMAIL_APP_PASSWORD")
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTransport.Code, errors.ErrTransport.Status, "smtp dial failed")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(s.timeout))
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close() //nolint:errcheck,gosec
		return "", errors.Wrap(err, errors.ErrTransport.Code, errors.ErrTransport.Status, "smtp handshake failed")
	}
	defer client.Close() //nolint:errcheck

	if err := client.StartTLS(&tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}); err != nil {
		return "", errors.Wrap(err, errors.ErrTransport.Code, errors.ErrTransport.Status, "smtp starttls failed")
	}
	auth := smtp.PlainAuth("", s.sender, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return "", errors.Wrap(err, errors.ErrTransport.Code, errors.ErrTransport.Status, "smtp auth failed")
	}

	if err := client.Mail(s.sender); err != nil {
		return "", fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return "", fmt.Errorf("smtp rcpt to: %w", err)
	}
	writer, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("smtp data: %w", err)
	}
	if _, err := writer.Write([]byte(buildMIMEMessage(s.sender, to, EmailSubject, message))); err != nil {
		return "", fmt.Errorf("smtp write body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("smtp finish body: %w", err)
	}
	if err := client.Quit(); err != nil {
		s.logger.Debug("smtp quit failed", zap.Error(err))
	}

	ref := fmt.Sprintf("email:%d", time.Now().Unix())
	s.logger.Info("email sent", zap.String("ref", ref))
	return ref, nil
}

func buildMIMEMessage(from, to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return b.String()
}
