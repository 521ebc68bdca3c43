package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventplanner/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{
		mailer:   mailer,
		renderer: renderer,
		logger:   logger,
	}
}

func (s *emailService) SendInvitation(_ context.Context, data *domain.InvitationEmailData) error {
	subject, html, text, err := s.renderer.Render("invitation", data)
	if err != nil {
		return fmt.Errorf("render invitation email: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, html, text); err != nil {
		return fmt.Errorf("send invitation email: %w", err)
	}
	s.logger.Info("invitation email sent", "email", data.Email)
	return nil
}
