package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EventAnnouncementEmailData holds data for the new-event announcement.
type EventAnnouncementEmailData struct {
	To               string
	Title            string
	Date             string
	Location         string
	Description      string
	RegistrationLink string
	FlyerURL         string // optional, first flyer resolved against the media base URL
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendEventAnnouncement(ctx context.Context, data *EventAnnouncementEmailData) error
}
