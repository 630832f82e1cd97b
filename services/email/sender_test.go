package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"tenantdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type fakeDialer struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeDialer) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func TestRenderTransactionNotificationWithFailures(t *testing.T) {
	subject, text, html, err := Render(TemplateTransactionNotification, TemplateData{
		Message:          "Payout <settled>",
		OrganizationName: "Acme",
		TransactionID:    "tx-1",
		ActionURL:        "https://app.example.com/orgs/acme/transactions/tx-1",
		CreatedAt:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Failures: []models.DeliveryFailure{
			{Destination: "#ops", Method: models.DeliverySlack, Error: "slack channel not found"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Update on transaction tx-1", subject)
	assert.Contains(t, text, "Transaction: tx-1")
	assert.Contains(t, text, "1 delivery of this notification failed:")
	assert.Contains(t, text, "- #ops (SLACK): slack channel not found")
	assert.Contains(t, text, "Sent May 1, 2024 12:00 UTC by Acme.")
	assert.Contains(t, html, "Payout &lt;settled&gt;")
	assert.Contains(t, html, `<a href="https://app.example.com/orgs/acme/transactions/tx-1">`)
}

func TestRenderSubjects(t *testing.T) {
	subject, _, _, err := Render(TemplateNotification, TemplateData{OrganizationName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "New notification from Acme", subject)

	subject, _, _, err = Render(TemplateNotification, TemplateData{Title: "Heads up"})
	require.NoError(t, err)
	assert.Equal(t, "Heads up", subject)

	subject, text, _, err := Render(TemplateInvitation, TemplateData{
		InviterName:      "Olive",
		OrganizationName: "Acme",
		ActionURL:        "https://app.example.com/invitations/i-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Olive invited you to Acme", subject)
	assert.Contains(t, text, "https://app.example.com/invitations/i-1")

	_, _, _, err = Render("unknown", TemplateData{})
	assert.Error(t, err)
}

func TestSendBuildsMessage(t *testing.T) {
	d := &fakeDialer{}
	s := newSender(d, "noreply@tenantdesk.io", zap.NewNop())

	receipt, err := s.Send(context.Background(), "max@acme.io", TemplateNotification, TemplateData{
		Title:   "Deploy",
		Message: "Deploy finished",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.NotEmpty(t, receipt.MessageID)

	rcpts, err := d.sent[0].GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"max@acme.io"}, rcpts)
	assert.Equal(t, []string{"Deploy"}, d.sent[0].GetGenHeader(mail.HeaderSubject))
}

func TestSendErrors(t *testing.T) {
	d := &fakeDialer{err: errors.New("554 relay denied")}
	s := newSender(d, "noreply@tenantdesk.io", zap.NewNop())

	_, err := s.Send(context.Background(), "max@acme.io", TemplateNotification, TemplateData{Message: "x"})
	assert.ErrorContains(t, err, "relay denied")

	_, err = s.Send(context.Background(), "not an address", TemplateNotification, TemplateData{Message: "x"})
	assert.ErrorContains(t, err, "invalid destination")
}
