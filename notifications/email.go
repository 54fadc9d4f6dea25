package notifications

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/models"
	templates "github.com/linesmerrill/dinebuddies-api/templates/html"
)

// emailed lists the notification types worth an email on top of the push
var emailed = map[models.NotificationType]bool{
	models.NotificationInvitationUpdated:   true,
	models.NotificationInvitationCancelled: true,
	models.NotificationPartnerGroupFull:    true,
	models.NotificationCommunityRemoved:    true,
}

type emailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// EmailSink mails the notification types listed in emailed through SendGrid
type EmailSink struct {
	client emailSender
	users  databases.UserDatabase
	from   *mail.Email
}

// NewEmailSink creates an EmailSink sending with the given SendGrid key
func NewEmailSink(apiKey, from string, users databases.UserDatabase) *EmailSink {
	return &EmailSink{
		client: sendgrid.NewSendClient(apiKey),
		users:  users,
		from:   mail.NewEmail("DineBuddies", from),
	}
}

// Name of the sink
func (s *EmailSink) Name() string { return "email" }

// Deliver emails the notification to its user when the type calls for it
// and the user has an address
func (s *EmailSink) Deliver(ctx context.Context, n models.Notification) error {
	if !emailed[n.Type] {
		return nil
	}
	user, err := s.users.FindByID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("find recipient: %w", err)
	}
	if user.Email == "" {
		return nil
	}

	to := mail.NewEmail(user.Name, user.Email)
	message := mail.NewSingleEmail(s.from, n.Title, to, n.Message, templates.RenderNotificationEmail(n.Title, n.Message))
	response, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", user.Email)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	zap.S().Infow("email sent successfully", "to", user.Email, "subject", n.Title)
	return nil
}
