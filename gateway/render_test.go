package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pillme/notifications/model"
)

var testTimeCreated = time.Unix(1594336370, 706917000)

func testNotification() *model.Notification {
	return &model.Notification{
		ID:          "a6a97fd2-74c5-42af-ab22-0549a63d3abd",
		Sender:      1,
		Receiver:    2,
		Kind:        model.DependencyRequest,
		TimeCreated: testTimeCreated,
	}
}

func TestRender(t *testing.T) {
	outbound, err := Render(testNotification(), 3, nil)
	require.NoError(t, err)

	assert.Equal(t, model.DependencyRequest, outbound.Kind)
	assert.Equal(t, int64(2), outbound.Recipient)
	assert.Equal(t, "You received a care relationship request", outbound.Subject)
	assert.Equal(t, int64(3), outbound.Total)
	assert.Equal(t, "a6a97fd2-74c5-42af-ab22-0549a63d3abd", outbound.Message["id"])
	assert.Equal(t, int64(1), outbound.Message["sender"])
	assert.Equal(t, "1594336370706", outbound.Message["timestamp"])

	// No setting means no email side-dispatch.
	assert.Empty(t, outbound.EmailAddress)
}

func TestRenderWithPayload(t *testing.T) {
	notification := testNotification()
	notification.Kind = model.PrescriptionRequest
	notification.Payload = "hypertension"

	outbound, err := Render(notification, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "You received shared prescription information: hypertension", outbound.Subject)
}

func TestRenderUnknownKind(t *testing.T) {
	notification := testNotification()
	notification.Kind = model.ChatMessage

	_, err := Render(notification, 1, nil)
	assert.Error(t, err)
}

func TestRenderEmail(t *testing.T) {
	setting := &model.Setting{
		MemberID:     2,
		Email:        true,
		EmailAddress: "somebody@example.org",
	}

	outbound, err := Render(testNotification(), 1, setting)
	require.NoError(t, err)
	assert.Equal(t, "somebody@example.org", outbound.EmailAddress)
	assert.Equal(t, "dependency_request", outbound.EmailTemplate)
	assert.Equal(t, outbound.Message, outbound.EmailValues)
}

func TestRenderEmailOptedOut(t *testing.T) {
	setting := &model.Setting{
		MemberID:     2,
		Email:        false,
		EmailAddress: "somebody@example.org",
	}

	outbound, err := Render(testNotification(), 1, setting)
	require.NoError(t, err)
	assert.Empty(t, outbound.EmailAddress)
	assert.Empty(t, outbound.EmailTemplate)
}

func TestRenderChat(t *testing.T) {
	outbound := RenderChat(&model.ChatEvent{
		RoomID:   7,
		Sender:   1,
		Receiver: 2,
		Text:     "did you take your pills?",
		SentAt:   testTimeCreated,
	})

	assert.Equal(t, model.ChatMessage, outbound.Kind)
	assert.Equal(t, int64(2), outbound.Recipient)
	assert.Equal(t, "did you take your pills?", outbound.Subject)
	assert.Equal(t, int64(7), outbound.Message["room_id"])
	assert.Equal(t, "1594336370706", outbound.Message["timestamp"])
	assert.Zero(t, outbound.Total)
}
