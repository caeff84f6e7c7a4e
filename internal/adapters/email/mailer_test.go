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
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, "noreply@parties247.co.il", "Parties247", discardLogger())

	err := m.Send(context.Background(), "admin@parties247.co.il", "subject", "<p>hi</p>", "")
	require.NoError(t, err)
	require.NotNil(t, client.input)
	assert.Equal(t, "Parties247 <noreply@parties247.co.il>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"admin@parties247.co.il"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "<p>hi</p>", aws.ToString(client.input.Message.Body.Html.Data))
	assert.Nil(t, client.input.Message.Body.Text)
}

func TestSESMailer_SendError(t *testing.T) {
	m := newSESMailer(&fakeSES{err: errors.New("throttled")}, "noreply@parties247.co.il", "", discardLogger())
	err := m.Send(context.Background(), "a@b.co", "s", "", "t")
	require.ErrorContains(t, err, "throttled")
}

func TestNewMailer_Providers(t *testing.T) {
	_, ok := NewMailer(MailerConfig{Provider: "noop"}, discardLogger()).(*noopMailer)
	assert.True(t, ok)
	_, ok = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, discardLogger()).(*noopMailer)
	assert.True(t, ok)
	_, ok = NewMailer(MailerConfig{Provider: "ses", SES: SESConfig{Region: "eu-west-1"}}, discardLogger()).(*sesMailer)
	assert.True(t, ok)

	require.NoError(t, NewMailer(MailerConfig{}, discardLogger()).Send(context.Background(), "a@b.co", "s", "", ""))
}
