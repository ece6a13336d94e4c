package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestTemplateRenderer_EventAnnouncement(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.EventAnnouncementEmailData{
		To:               "list@example.com",
		Title:            "Spring <Gala>",
		Date:             "2026-07-01",
		Location:         "Main Hall",
		Description:      "Dinner and music.",
		RegistrationLink: "https://example.com/register",
		FlyerURL:         "https://cdn.example.com/events/flyers/a.png",
	}

	subject, html, text, err := r.Render("event_announcement", data)
	require.NoError(t, err)
	assert.Equal(t, "New event: Spring <Gala> on 2026-07-01", subject)
	assert.Contains(t, html, "Spring &lt;Gala&gt;")
	assert.Contains(t, html, `href="https://example.com/register"`)
	assert.Contains(t, html, "https://cdn.example.com/events/flyers/a.png")
	assert.Contains(t, text, "Where: Main Hall")
	assert.Contains(t, text, "Register: https://example.com/register")
}

func TestTemplateRenderer_OptionalSections(t *testing.T) {
	r := NewTemplateRenderer()
	_, html, text, err := r.Render("event_announcement", &domain.EventAnnouncementEmailData{
		Title: "Meetup", Date: "2026-07-01", Description: "Talks.",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "Register now")
	assert.NotContains(t, html, "<img")
	assert.NotContains(t, text, "Where:")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("missing", nil)
	require.Error(t, err)
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, MailerConfig{FromAddress: "events@example.com", FromName: "Events"}, testLogger)

	err := m.Send(context.Background(), "list@example.com", "Hi", "<p>Hi</p>", "")
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "Events <events@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"list@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Hi", aws.ToString(client.input.Message.Subject.Data))
	assert.NotNil(t, client.input.Message.Body.Html)
	assert.Nil(t, client.input.Message.Body.Text)
}

func TestSESMailer_SendError(t *testing.T) {
	m := newSESMailer(&fakeSES{err: errors.New("throttled")}, MailerConfig{FromAddress: "events@example.com"}, testLogger)
	err := m.Send(context.Background(), "list@example.com", "Hi", "", "Hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)
	require.NoError(t, m.Send(context.Background(), "a@example.com", "s", "h", "t"))

	m, err = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)

	_, err = NewMailer(MailerConfig{Provider: "ses"}, testLogger)
	require.Error(t, err)

	m, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "events@example.com", SES: SESConfig{Region: "eu-west-1"}}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)
}
