package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

type fakeEmailSender struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeEmailSender) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{}, nil
}

type fakeAlertPublisher struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeAlertPublisher) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func testSummary() models.SubmissionSummary {
	return models.SubmissionSummary{
		ID:       "r1",
		Kind:     models.KindRepairForm,
		Status:   "Nuova",
		Name:     "Mario Rossi",
		Email:    "mario@example.com",
		Headline: "Rolex Submariner",
	}
}

func TestNotifier_SendsBothChannels(t *testing.T) {
	email := &fakeEmailSender{}
	alerts := &fakeAlertPublisher{}
	n := NewNotifier(email, alerts, Options{
		EmailEnabled: true,
		FromEmail:    "concierge@tempus.example.com",
		AlertEnabled: true,
		TopicARN:     "arn:aws:sns:eu-south-1:123456789:intake",
	}, logger.NewNoOpLogger())

	n.SubmissionReceived(context.Background(), testSummary())

	require.Len(t, email.inputs, 1)
	assert.Equal(t, "concierge@tempus.example.com", *email.inputs[0].Source)
	assert.Equal(t, []string{"mario@example.com"}, email.inputs[0].Destination.ToAddresses)
	assert.Contains(t, *email.inputs[0].Message.Subject.Data, "riparazione")
	assert.Contains(t, *email.inputs[0].Message.Body.Text.Data, "Mario Rossi")

	require.Len(t, alerts.inputs, 1)
	assert.Equal(t, "arn:aws:sns:eu-south-1:123456789:intake", *alerts.inputs[0].TopicArn)
	assert.Contains(t, *alerts.inputs[0].Message, "Rolex Submariner")
}

func TestNotifier_DisabledChannelsAreSkipped(t *testing.T) {
	email := &fakeEmailSender{}
	alerts := &fakeAlertPublisher{}
	n := NewNotifier(email, alerts, Options{}, logger.NewNoOpLogger())

	n.SubmissionReceived(context.Background(), testSummary())

	assert.Empty(t, email.inputs)
	assert.Empty(t, alerts.inputs)
}

func TestNotifier_EmailFailureDoesNotBlockAlert(t *testing.T) {
	email := &fakeEmailSender{err: fmt.Errorf("ses throttled")}
	alerts := &fakeAlertPublisher{}
	n := NewNotifier(email, alerts, Options{
		EmailEnabled: true,
		FromEmail:    "concierge@tempus.example.com",
		AlertEnabled: true,
		TopicARN:     "arn:topic",
	}, logger.NewNoOpLogger())

	// must not panic or propagate the SES error
	n.SubmissionReceived(context.Background(), testSummary())

	require.Len(t, alerts.inputs, 1)
}

func TestNotifier_NoRecipientNoEmail(t *testing.T) {
	email := &fakeEmailSender{}
	n := NewNotifier(email, nil, Options{EmailEnabled: true, FromEmail: "x@y.it"}, logger.NewNoOpLogger())

	summary := testSummary()
	summary.Email = ""
	n.SubmissionReceived(context.Background(), summary)

	assert.Empty(t, email.inputs)
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "riparazione", kindLabel(models.KindRepairForm))
	assert.Equal(t, "richiesta personalizzata", kindLabel(models.KindRequestForm))
	assert.Equal(t, "proposta di vendita", kindLabel(models.KindSellForm))
}
