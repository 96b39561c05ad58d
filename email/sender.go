package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/vishwajeetguru/smart-truck-manager/Config"
	"github.com/vishwajeetguru/smart-truck-manager/Logger"
	"github.com/vishwajeetguru/smart-truck-manager/Models"
)

// Sender delivers one message.
type Sender interface {
	Send(message Models.EmailMessage) error
}

// NewSender returns an SMTP sender, or a sender that only logs when SMTP is not configured.
func NewSender(cfg Config.EmailConfig) Sender {
	if !cfg.Configured() {
		return LogSender{}
	}
	return &SMTPSender{config: cfg}
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct{}

func (LogSender) Send(message Models.EmailMessage) error {
	Logger.Log.Info().
		Strs("to", message.To).
		Str("subject", message.Subject).
		Msg("smtp not configured, email not sent")
	return nil
}

type SMTPSender struct {
	config Config.EmailConfig
}

func (s *SMTPSender) Send(message Models.EmailMessage) error {
	cfg := s.config
	body := compose(cfg, message)
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPServer)

	recipients := append(append([]string{}, message.To...), message.CC...)
	serverAddr := fmt.Sprintf("%s:%d", cfg.SMTPServer, cfg.SMTPPort)

	if !cfg.TLSEnabled {
		return smtp.SendMail(serverAddr, auth, cfg.FromEmail, recipients, []byte(body))
	}

	conn, err := tls.Dial("tcp", serverAddr, &tls.Config{ServerName: cfg.SMTPServer})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, cfg.SMTPServer)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(cfg.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, recipient := range recipients {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to add recipient %s: %w", recipient, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data connection: %w", err)
	}
	if _, err = w.Write([]byte(body)); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data connection: %w", err)
	}
	return client.Quit()
}

func compose(cfg Config.EmailConfig, message Models.EmailMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", cfg.FromName, cfg.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(message.To, ", "))
	if len(message.CC) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(message.CC, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", message.Subject)
	if message.IsHTML {
		b.WriteString("MIME-Version: 1.0\r\n")
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	} else {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(message.Body)
	return b.String()
}
