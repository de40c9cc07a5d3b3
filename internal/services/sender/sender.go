// Package services содержит логику отправки писем восстановления пароля.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mobilka/subscription-portal/internal/lib/sl"
	"github.com/mobilka/subscription-portal/internal/lib/smtp"
	"github.com/mobilka/subscription-portal/internal/models"
)

// SenderService отправляет письма восстановления пароля по заданиям из очереди.
type SenderService struct {
	transport   smtp.TransportInterface
	frontendURL string
	log         *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, frontendURL string, log *slog.Logger) *SenderService {
	return &SenderService{
		transport:   transport,
		frontendURL: frontendURL,
		log:         log,
	}
}

// SendPasswordResetEmail разбирает задание из очереди и отправляет письмо
// со ссылкой восстановления пароля.
func (s *SenderService) SendPasswordResetEmail(body []byte) error {
	const op = "services.sender.SendPasswordResetEmail"

	var job models.ResetEmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(s.frontendURL, "/"), job.Token)
	message := s.composeMessage(job.Email, job.Name, resetURL)

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Debug("failed to close smtp client", sl.Err(closeErr))
		}
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Rcpt(job.Email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := writer.Write([]byte(message)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Quit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("password reset email sent", slog.String("email", job.Email))
	return nil
}

// composeMessage собирает текст письма восстановления пароля.
func (s *SenderService) composeMessage(to, name, resetURL string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", s.transport.GetSMTPUser()))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString("Subject: Password Reset Request\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(fmt.Sprintf("Hello %s,\r\n\r\n", name))
	b.WriteString("You are receiving this email because a password reset was requested for your account.\r\n\r\n")
	b.WriteString("Please follow the link below to set a new password:\r\n")
	b.WriteString(resetURL + "\r\n\r\n")
	b.WriteString("The link is valid for 10 minutes and can be used only once.\r\n\r\n")
	b.WriteString("If you did not request a password reset, ignore this email.\r\n")
	return b.String()
}
