package utils

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"authdemo/models"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent     []*mail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeSender) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return f.response, f.err
}

var noticeIdentity = models.Identity{ID: "1", Email: "demo@example.com", Name: "Demo User"}

func TestBuildSignInMessage(t *testing.T) {
	at := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	msg := buildSignInMessage(mail.NewEmail("authdemo", "noreply@example.com"), noticeIdentity, "10.0.0.1", "<agent>", at)

	require.Equal(t, "New sign-in", msg.Subject)
	require.Equal(t, "noreply@example.com", msg.From.Address)
	require.Len(t, msg.Personalizations, 1)
	require.Equal(t, "demo@example.com", msg.Personalizations[0].To[0].Address)
	require.Len(t, msg.Content, 2)
	require.Contains(t, msg.Content[0].Value, "10.0.0.1")
	require.Contains(t, msg.Content[1].Value, "&lt;agent&gt;")
	require.True(t, strings.Contains(msg.Content[0].Value, "Mon, 19 Oct 2026 08:30:00 UTC"))
}

func TestSignInMailerNotify(t *testing.T) {
	sender := &fakeSender{response: &rest.Response{StatusCode: 202}}
	mailer := &SignInMailer{client: sender, from: mail.NewEmail("authdemo", "noreply@example.com")}

	require.NoError(t, mailer.NotifySignIn(context.Background(), noticeIdentity, "10.0.0.1", "ua", time.Now()))
	require.Len(t, sender.sent, 1)

	sender.response = &rest.Response{StatusCode: 401, Body: "unauthorized"}
	err := mailer.NotifySignIn(context.Background(), noticeIdentity, "10.0.0.1", "ua", time.Now())
	require.ErrorContains(t, err, "status 401")

	boom := errors.New("dial tcp: timeout")
	sender.err = boom
	err = mailer.NotifySignIn(context.Background(), noticeIdentity, "10.0.0.1", "ua", time.Now())
	require.ErrorIs(t, err, boom)
}

func TestNewSignInMailer(t *testing.T) {
	mailer := NewSignInMailer("key", "noreply@example.com")
	require.NotNil(t, mailer.client)
	require.Equal(t, "noreply@example.com", mailer.from.Address)
}
