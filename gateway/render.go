package gateway

import (
	"fmt"
	"strings"

	"github.com/pillme/notifications/common"
	"github.com/pillme/notifications/model"
)

// subjects maps each persistable kind to its rendered subject line. Collapsing the
// per-kind rendering into one table keeps propose/resolve parameterized by kind instead
// of duplicated per kind.
var subjects = map[model.Kind]string{
	model.DependencyRequest:         "You received a care relationship request",
	model.DependencyAccept:          "Your care relationship request was accepted",
	model.DependencyReject:          "Your care relationship request was declined",
	model.MedicineRequest:           "You received a medication registration request",
	model.MedicineAccept:            "Your medication registration request was accepted",
	model.MedicineReject:            "Your medication registration request was declined",
	model.DependencyDeleteRequest:   "You received a care relationship deletion request",
	model.DependencyDeleteAccept:    "Your care relationship deletion request was accepted",
	model.DependencyDeleteReject:    "Your care relationship deletion request was declined",
	model.PrescriptionRequest:       "You received shared prescription information",
	model.PrescriptionAccept:        "Your shared prescription was accepted",
	model.PrescriptionReject:        "Your shared prescription was declined",
	model.PrescriptionDeleteRequest: "You received a prescription deletion request",
	model.PrescriptionDeleteAccept:  "Your prescription deletion request was accepted",
	model.PrescriptionDeleteReject:  "Your prescription deletion request was declined",
	model.DoseReminder:              "Time to take your medication",
	model.AnalysisComplete:          "Your prescription analysis is complete",
}

// Render formats a persisted notification into a transport-ready message. The
// recipient's setting, when present, enables the email side-dispatch.
func Render(notification *model.Notification, total int64, setting *model.Setting) (*Outbound, error) {
	subject, ok := subjects[notification.Kind]
	if !ok {
		return nil, fmt.Errorf("no message template for notification kind %s", notification.Kind)
	}
	if notification.Payload != "" {
		subject = fmt.Sprintf("%s: %s", subject, notification.Payload)
	}

	outbound := &Outbound{
		Kind:      notification.Kind,
		Recipient: notification.Receiver,
		Subject:   subject,
		Message: map[string]interface{}{
			"id":        notification.ID,
			"sender":    notification.Sender,
			"receiver":  notification.Receiver,
			"text":      subject,
			"timestamp": common.FormatTimestamp(notification.TimeCreated),
		},
		Total: total,
	}

	if setting != nil && setting.Email && setting.EmailAddress != "" {
		outbound.EmailAddress = setting.EmailAddress
		outbound.EmailTemplate = strings.ToLower(string(notification.Kind))
		outbound.EmailValues = outbound.Message
	}

	return outbound, nil
}

// RenderChat formats a chat event into a transport-ready message. Chat messages carry
// the room ID and raw text instead of a templated subject, and no record backs them.
func RenderChat(event *model.ChatEvent) *Outbound {
	return &Outbound{
		Kind:      model.ChatMessage,
		Recipient: event.Receiver,
		Subject:   event.Text,
		Message: map[string]interface{}{
			"room_id":   event.RoomID,
			"sender":    event.Sender,
			"receiver":  event.Receiver,
			"text":      event.Text,
			"timestamp": common.FormatTimestamp(event.SentAt),
		},
	}
}
