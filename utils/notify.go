package utils

import (
	"context"
	"fmt"
	"html"
	"time"

	"authdemo/models"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SignInMailer emails the account owner whenever a login succeeds.
type SignInMailer struct {
	client mailSender
	from   *mail.Email
}

func NewSignInMailer(apiKey, from string) *SignInMailer {
	return &SignInMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("authdemo", from),
	}
}

func (m *SignInMailer) NotifySignIn(ctx context.Context, identity models.Identity, ip, userAgent string, at time.Time) error {
	message := buildSignInMessage(m.from, identity, ip, userAgent, at)
	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sending sign-in notice: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sending sign-in notice: status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func buildSignInMessage(from *mail.Email, identity models.Identity, ip, userAgent string, at time.Time) *mail.SGMailV3 {
	to := mail.NewEmail(identity.Name, identity.Email)
	when := at.UTC().Format(time.RFC1123)
	plainTextContent := fmt.Sprintf("New sign-in to your account at %s from %s (%s).", when, ip, userAgent)
	htmlContent := fmt.Sprintf("<p>New sign-in to your account at <strong>%s</strong> from %s (%s).</p>",
		when, html.EscapeString(ip), html.EscapeString(userAgent))
	return mail.NewSingleEmail(from, "New sign-in", to, plainTextContent, htmlContent)
}
