package notifications

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"time"

	"github.com/google/uuid"
)

// SMTPSender delivers email over SMTP. Port 465 uses implicit TLS; any other
// port upgrades the connection with STARTTLS.
type SMTPSender struct {
	Host       string
	Port       int
	Username   string
	Password   string
	SenderName string
	Timeout    time.Duration
}

// NewSMTPSender creates an SMTPSender from the given connection settings.
func NewSMTPSender(host string, port int, username, password, senderName string) *SMTPSender {
	return &SMTPSender{
		Host:       host,
		Port:       port,
		Username:   username,
		Password:   password,
		SenderName: senderName,
		Timeout:    10 * time.Second,
	}
}

func (s *SMTPSender) Send(_ context.Context, email Email) error {
	msg := s.buildMessage(email)
	address := fmt.Sprintf("%s:%d", s.Host, s.Port)

	if s.Port == 465 {
		return s.sendImplicitTLS(address, email.To, msg)
	}
	return s.sendSTARTTLS(address, email.To, msg)
}

func (s *SMTPSender) sendImplicitTLS(address, recipient string, msg []byte) error {
	tlsConfig := &tls.Config{ServerName: s.Host}

	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: s.Timeout}, "tcp", address, tlsConfig)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer client.Close()

	return s.sendViaClient(client, recipient, msg)
}

func (s *SMTPSender) sendSTARTTLS(address, recipient string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", address, s.Timeout)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
		return fmt.Errorf("start TLS: %w", err)
	}

	return s.sendViaClient(client, recipient, msg)
}

func (s *SMTPSender) sendViaClient(client *smtp.Client, recipient string, msg []byte) error {
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}
	if err := client.Mail(s.Username); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data writer: %w", err)
	}

	return client.Quit()
}

func (s *SMTPSender) buildMessage(email Email) []byte {
	encodedSubject := mime.QEncoding.Encode("utf-8", email.Subject)
	encodedSenderName := mime.QEncoding.Encode("utf-8", s.SenderName)

	msgID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.Host)
	date := time.Now().Format(time.RFC1123Z)

	return fmt.Appendf(nil,
		"Message-ID: %s\r\n"+
			"Date: %s\r\n"+
			"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n"+
			"%s",
		msgID, date, email.To, encodedSenderName, s.Username, encodedSubject, email.Body,
	)
}
