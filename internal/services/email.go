package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventmanager/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

func (s *emailService) SendActivation(ctx context.Context, data *domain.ActivationEmailData) error {
	if data == nil {
		return fmt.Errorf("activation email data is nil")
	}
	return s.send(ctx, "activation", data.Email, data)
}

func (s *emailService) SendPasswordReset(ctx context.Context, data *domain.PasswordResetEmailData) error {
	if data == nil {
		return fmt.Errorf("password reset email data is nil")
	}
	return s.send(ctx, "password_reset", data.Email, data)
}

func (s *emailService) SendRSVPConfirmation(ctx context.Context, data *domain.RSVPEmailData) error {
	if data == nil {
		return fmt.Errorf("rsvp email data is nil")
	}
	return s.send(ctx, "rsvp_confirmation", data.Email, data)
}

func (s *emailService) SendRSVPCancellation(ctx context.Context, data *domain.RSVPEmailData) error {
	if data == nil {
		return fmt.Errorf("rsvp email data is nil")
	}
	return s.send(ctx, "rsvp_cancellation", data.Email, data)
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.Debug("email sent", "template", template, "to", to)
	return nil
}
