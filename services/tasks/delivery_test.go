package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryTaskRoundTrip(t *testing.T) {
	task, opts, err := NewDeliveryTask("n-1")
	require.NoError(t, err)
	assert.Equal(t, TypeDeliverNotification, task.Type())
	assert.Len(t, opts, 4)

	p, err := ParseDeliveryTask(task)
	require.NoError(t, err)
	assert.Equal(t, "n-1", p.NotificationID)
}

func TestParseDeliveryTaskRejectsBadPayload(t *testing.T) {
	_, err := ParseDeliveryTask(asynq.NewTask(TypeDeliverNotification, []byte("{")))
	assert.Error(t, err)

	_, err = ParseDeliveryTask(asynq.NewTask(TypeDeliverNotification, []byte(`{}`)))
	assert.ErrorContains(t, err, "missing notificationId")
}
