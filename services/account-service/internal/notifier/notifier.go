// Package notifier sends account e-mails.
package notifier

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/model"
)

// Notifier tells users about account events.
type Notifier interface {
	Welcome(ctx context.Context, user *model.User) error
	DocumentReceived(ctx context.Context, user *model.User, docType model.DocumentType) error
	PasswordReset(ctx context.Context, email, link string, ttl time.Duration) error
}

// Sender delivers one message. *mailer.Mailer implements it.
type Sender interface {
	SendHTML(to []string, subject, htmlBody, textBody string) error
}

type message struct {
	subject string
	html    *htmltemplate.Template
	text    *template.Template
}

func newMessage(subject, html, text string) message {
	return message{
		subject: subject,
		html:    htmltemplate.Must(htmltemplate.New(subject).Parse(html)),
		text:    template.Must(template.New(subject).Parse(text)),
	}
}

var (
	welcomeMessage = newMessage("Welcome to Showcase",
		`<p>Hi {{.Name}},</p>
<p>Your Showcase account is ready. Sign in to build your profile and start verifying your skills.</p>
<p>The Showcase Team</p>`,
		`Hi {{.Name}},

Your Showcase account is ready. Sign in to build your profile and start verifying your skills.

The Showcase Team
`)

	documentReceivedMessage = newMessage("We received your document",
		`<p>Hi {{.Name}},</p>
<p>We received your {{.Document}} and will review it shortly.</p>
<p>The Showcase Team</p>`,
		`Hi {{.Name}},

We received your {{.Document}} and will review it shortly.

The Showcase Team
`)

	passwordResetMessage = newMessage("Password Reset Request",
		`<p>Hi,</p>
<p>We received a request to reset the password for your account.</p>
<p>If you made this request, click the link below to choose a new password:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>This link expires in {{.TTL}}. If you did not request a reset, you can ignore this email.</p>
<p>The Showcase Team</p>`,
		`Hi,

We received a request to reset the password for your account.
If you made this request, open the link below to choose a new password:

{{.Link}}

This link expires in {{.TTL}}. If you did not request a reset, you can ignore this email.

The Showcase Team
`)
)

type emailNotifier struct {
	sender Sender
	logger *zerolog.Logger
}

// NewEmailNotifier returns a Notifier that mails through sender.
func NewEmailNotifier(sender Sender, logger *zerolog.Logger) Notifier {
	return &emailNotifier{
		sender: sender,
		logger: logger,
	}
}

func (n *emailNotifier) Welcome(_ context.Context, user *model.User) error {
	return n.send(user.Email, welcomeMessage, map[string]string{"Name": user.Name})
}

func (n *emailNotifier) DocumentReceived(_ context.Context, user *model.User, docType model.DocumentType) error {
	return n.send(user.Email, documentReceivedMessage, map[string]string{
		"Name":     user.Name,
		"Document": documentLabel(docType),
	})
}

func (n *emailNotifier) PasswordReset(_ context.Context, email, link string, ttl time.Duration) error {
	return n.send(email, passwordResetMessage, map[string]string{
		"Link": link,
		"TTL":  ttl.String(),
	})
}

func (n *emailNotifier) send(to string, msg message, data any) error {
	var html, text bytes.Buffer
	if err := msg.html.Execute(&html, data); err != nil {
		return fmt.Errorf("render %q: %w", msg.subject, err)
	}
	if err := msg.text.Execute(&text, data); err != nil {
		return fmt.Errorf("render %q: %w", msg.subject, err)
	}

	if err := n.sender.SendHTML([]string{to}, msg.subject, html.String(), text.String()); err != nil {
		return fmt.Errorf("send %q: %w", msg.subject, err)
	}

	n.logger.Debug().Str("subject", msg.subject).Msg("notification sent")
	return nil
}

func documentLabel(t model.DocumentType) string {
	switch t {
	case model.DocumentStudentID:
		return "student ID"
	case model.DocumentNationalID:
		return "national ID"
	default:
		return "document"
	}
}

type nopNotifier struct{}

// NewNopNotifier returns a Notifier that drops every message. It is used when SMTP is not configured.
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

func (nopNotifier) Welcome(context.Context, *model.User) error { return nil }

func (nopNotifier) DocumentReceived(context.Context, *model.User, model.DocumentType) error { return nil }

func (nopNotifier) PasswordReset(context.Context, string, string, time.Duration) error { return nil }
