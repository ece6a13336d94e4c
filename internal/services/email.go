package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventboard/internal/domain"
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

// SendEventAnnouncement sends the "event_announcement" template to data.To.
func (s *emailService) SendEventAnnouncement(ctx context.Context, data *domain.EventAnnouncementEmailData) error {
	if data == nil {
		return fmt.Errorf("event announcement data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("event_announcement", data)
	if err != nil {
		return fmt.Errorf("failed to render event_announcement template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.To, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send event announcement: %w", err)
	}
	s.logger.InfoContext(ctx, "event announcement sent", "to", data.To, "title", data.Title)
	return nil
}
