// Package gateway formats notifications into transport-ready messages and forwards them
// to the external notifier. Delivery is best-effort: a failed send is surfaced to the
// caller, but the already-persisted notification record is never rolled back.
package gateway

import (
	"context"
	"strconv"
	"strings"

	"github.com/cyverse-de/messaging/v9"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pillme/notifications/common"
	"github.com/pillme/notifications/model"
)

// Outbound is a rendered, transport-ready message.
type Outbound struct {
	Kind      model.Kind
	Recipient int64
	Subject   string
	Message   map[string]interface{}
	Payload   interface{}
	Total     int64

	// EmailAddress enables the email side-dispatch when non-empty.
	EmailAddress  string
	EmailTemplate string
	EmailValues   map[string]interface{}
}

// Notifier forwards a rendered message to its recipient.
type Notifier interface {
	Send(ctx context.Context, outbound *Outbound) error
}

// MessagingClient describes the functions we need from messaging.Client.
type MessagingClient interface {
	PublishNotificationMessage(msg *messaging.WrappedNotificationMessage) error
	PublishEmailRequest(req *messaging.EmailRequest) error
}

// AMQPNotifier publishes rendered messages to the notifications exchange, where the
// push fanout picks them up for delivery.
type AMQPNotifier struct {
	client MessagingClient
	log    *logrus.Entry
}

// NewAMQPNotifier returns a notifier backed by the given messaging client.
func NewAMQPNotifier(client MessagingClient, log *logrus.Entry) *AMQPNotifier {
	return &AMQPNotifier{client: client, log: log}
}

// Send publishes the outbound message, plus an email request when the recipient's
// settings ask for one.
func (n *AMQPNotifier) Send(ctx context.Context, outbound *Outbound) error {
	wrapMsg := "unable to publish the notification message"

	sendEmail := outbound.EmailAddress != ""
	if sendEmail {
		if err := common.ValidateEmailAddress(outbound.EmailAddress); err != nil {
			n.log.WithError(err).Warnf(
				"skipping email dispatch to recipient %d: invalid address", outbound.Recipient,
			)
			sendEmail = false
		}
	}

	// Publish the wrapped notification message.
	err := n.client.PublishNotificationMessage(&messaging.WrappedNotificationMessage{
		Total: outbound.Total,
		Message: &messaging.NotificationMessage{
			Type:          strings.ToLower(string(outbound.Kind)),
			User:          strconv.FormatInt(outbound.Recipient, 10),
			Subject:       outbound.Subject,
			Message:       outbound.Message,
			Payload:       outbound.Payload,
			Email:         sendEmail,
			EmailTemplate: outbound.EmailTemplate,
		},
	})
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Publish the email request if one was asked for.
	if sendEmail {
		err = n.client.PublishEmailRequest(&messaging.EmailRequest{
			TemplateName:   outbound.EmailTemplate,
			TemplateValues: outbound.EmailValues,
			Subject:        outbound.Subject,
			ToAddress:      outbound.EmailAddress,
		})
		if err != nil {
			return errors.Wrap(err, "unable to publish the email request")
		}
	}

	return nil
}
