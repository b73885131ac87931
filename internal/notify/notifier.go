// Package notify fans a persisted submission out to the customer (SES
// confirmation email) and to the back office (SNS ops alert). Both channels
// are best-effort: a delivery failure is logged and swallowed, never
// propagated to the submitting client.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// EmailSender is the slice of the SES client the notifier needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// AlertPublisher is the slice of the SNS client the notifier needs.
type AlertPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Options selects which channels are active.
type Options struct {
	EmailEnabled bool
	FromEmail    string
	AlertEnabled bool
	TopicARN     string
}

// Notifier implements the submission service's notification hook.
type Notifier struct {
	email  EmailSender
	alerts AlertPublisher
	opts   Options
	logger logger.Logger
}

func NewNotifier(email EmailSender, alerts AlertPublisher, opts Options, log logger.Logger) *Notifier {
	return &Notifier{
		email:  email,
		alerts: alerts,
		opts:   opts,
		logger: log,
	}
}

func kindLabel(kind models.FormKind) string {
	switch kind {
	case models.KindRepairForm:
		return "riparazione"
	case models.KindRequestForm:
		return "richiesta personalizzata"
	case models.KindSellForm:
		return "proposta di vendita"
	}
	return string(kind)
}

// SubmissionReceived sends the confirmation email and the ops alert.
func (n *Notifier) SubmissionReceived(ctx context.Context, summary models.SubmissionSummary) {
	n.sendConfirmationEmail(ctx, summary)
	n.publishOpsAlert(ctx, summary)
}

func (n *Notifier) sendConfirmationEmail(ctx context.Context, summary models.SubmissionSummary) {
	if !n.opts.EmailEnabled || n.email == nil || summary.Email == "" {
		return
	}

	subject := fmt.Sprintf("Tempus Concierge - Abbiamo ricevuto la tua %s", kindLabel(summary.Kind))
	body := fmt.Sprintf(
		"Gentile %s,\n\n"+
			"abbiamo ricevuto la tua %s (%s) e la stiamo esaminando.\n"+
			"Ti contatteremo al più presto.\n\n"+
			"Tempus Concierge",
		summary.Name, kindLabel(summary.Kind), summary.Headline)

	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.opts.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{summary.Email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		n.logger.Warn("Confirmation email failed", map[string]interface{}{
			"requestId": summary.ID,
			"kind":      string(summary.Kind),
			"error":     err.Error(),
		})
		return
	}

	n.logger.Debug("Confirmation email sent", map[string]interface{}{
		"requestId": summary.ID,
	})
}

func (n *Notifier) publishOpsAlert(ctx context.Context, summary models.SubmissionSummary) {
	if !n.opts.AlertEnabled || n.alerts == nil {
		return
	}

	message := fmt.Sprintf("Nuova %s: %s (%s) da %s",
		kindLabel(summary.Kind), summary.Headline, summary.ID, summary.Name)

	_, err := n.alerts.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.opts.TopicARN),
		Subject:  aws.String("Nuova richiesta ricevuta"),
		Message:  aws.String(message),
	})
	if err != nil {
		n.logger.Warn("Ops alert failed", map[string]interface{}{
			"requestId": summary.ID,
			"kind":      string(summary.Kind),
			"error":     err.Error(),
		})
		return
	}

	n.logger.Debug("Ops alert published", map[string]interface{}{
		"requestId": summary.ID,
	})
}
