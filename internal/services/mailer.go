package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/bugnest/backend/internal/config"
	"github.com/bugnest/backend/pkg/logger"
)

// EmailService sends notification mail over SMTP. Delivery failures are
// logged, never surfaced to the caller: mail is fire-and-forget.
type EmailService struct {
	cfg *config.EmailConfig
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Send delivers a single plain-text message. Returns nil without sending
// when mail is disabled.
func (s *EmailService) Send(to, subject, body string) error {
	if !s.cfg.Enabled || s.cfg.Host == "" {
		return nil
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseTLS {
		return s.sendTLS(addr, from, to, auth, []byte(msg))
	}
	return smtp.SendMail(addr, auth, from, []string{to}, []byte(msg))
}

func (s *EmailService) sendTLS(addr, from, to string, auth smtp.Auth, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// SendInviteEmail notifies an invitee about a new or renewed invitation.
func (s *EmailService) SendInviteEmail(to, projectName, inviterName, message string) {
	subject := fmt.Sprintf("[BugNest] You have been invited to %s", projectName)
	body := fmt.Sprintf("Hello,\n\n%s invited you to join the project %q on BugNest.\n",
		inviterName, projectName)
	if message != "" {
		body += "\nMessage from the inviter:\n" + message + "\n"
	}
	body += "\nLog in (or register with this email address) to accept or decline the invitation.\n\nThe BugNest Team"

	if err := s.Send(to, subject, body); err != nil {
		logger.Warnf("[Email] invite notification to %s failed: %v", to, err)
	}
}

// SendWelcomeEmail delivers login details for an admin-provisioned account.
func (s *EmailService) SendWelcomeEmail(to, name, tempPassword string) {
	subject := "Welcome to BugNest - Your Account Details"
	body := fmt.Sprintf("Hello %s,\n\nYour account has been created.\n\nEmail: %s\nTemporary Password: %s\n\nWe recommend changing your password after logging in.\n\nThe BugNest Team",
		name, to, tempPassword)

	if err := s.Send(to, subject, body); err != nil {
		logger.Warnf("[Email] welcome mail to %s failed: %v", to, err)
	}
}
