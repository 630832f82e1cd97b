package notification

import (
	"testing"

	"tenantdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeliveryPolicy(t *testing.T) {
	p, err := ParseDeliveryPolicy("")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = ParseDeliveryPolicy("null")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = ParseDeliveryPolicy(`{"method":"SLACK"}`)
	require.NoError(t, err)
	assert.Equal(t, []models.NotificationInstruction{
		{Destination: "owner@acme.io", Method: models.MethodPtr(models.DeliverySlack)},
	}, p.Instructions("owner@acme.io"))

	for _, raw := range []string{
		`{"method":"PIGEON"}`,
		`{"deliveries":[{"destination":""}]}`,
		`{"deliveries":[{"destination":"#ops","method":"FAX"}]}`,
		`{"channel":"#ops"}`,
		`[1,2]`,
	} {
		_, err := ParseDeliveryPolicy(raw)
		assert.Error(t, err, raw)
	}
}

func TestNilPolicyDefaultsToOwner(t *testing.T) {
	var p *DeliveryPolicy
	assert.Equal(t, []models.NotificationInstruction{{Destination: "owner@acme.io"}}, p.Instructions("owner@acme.io"))
}

func TestSlackHandlerValidate(t *testing.T) {
	h := &slackHandler{}
	for _, ok := range []string{"#ops", "@max", "max@acme.io"} {
		assert.NoError(t, h.Validate(ok), ok)
	}
	for _, bad := range []string{"#", "@", "ops", "max@acme"} {
		assert.ErrorIs(t, h.Validate(bad), ErrInvalidDestination, bad)
	}
}

func TestEmailHandlerValidate(t *testing.T) {
	h := &emailHandler{}
	assert.NoError(t, h.Validate("max@acme.io"))
	assert.ErrorIs(t, h.Validate("#ops"), ErrInvalidDestination)
}

func TestSlackTextListsFailures(t *testing.T) {
	text := slackText(deliveryRequest{
		Notification: &models.Notification{Message: "Backup failed"},
		Failures: []models.DeliveryFailure{
			{Destination: "#ops", Method: models.DeliverySlack, Error: "slack channel not found: #ops"},
			{Destination: "a@b.io", Error: "boom"},
		},
	})
	assert.Equal(t, "Backup failed\n\n:warning: 2 deliveries of this notification failed:"+
		"\n• #ops (SLACK): slack channel not found: #ops\n• a@b.io: boom", text)
}
