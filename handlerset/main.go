// Package handlerset wires the action message handlers onto an AMQP consumer.
package handlerset

import (
	"context"
	"strings"

	"github.com/cyverse-de/messaging/v9"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/pillme/notifications/common"
	"github.com/pillme/notifications/handlers"
)

// routingKeyPrefix scopes the queue binding; the final segment of each routing key
// names the action.
const routingKeyPrefix = "notifications"

// HandlerSet represents a set of AMQP message handlers.
type HandlerSet struct {
	amqpClient   *messaging.Client
	amqpSettings *common.AMQPSettings
	handlerFor   map[string]handlers.MessageHandler
	log          *logrus.Entry
}

// New creates a new handler set.
func New(
	amqpSettings *common.AMQPSettings,
	handlerFor map[string]handlers.MessageHandler,
	log *logrus.Entry,
) (*HandlerSet, error) {
	wrapMsg := "unable to create the message handler set"

	// Create the AMQP client.
	amqpClient, err := messaging.NewClient(amqpSettings.URI, true)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Build and return the handler set.
	handlerSet := HandlerSet{
		amqpClient:   amqpClient,
		amqpSettings: amqpSettings,
		handlerFor:   handlerFor,
		log:          log,
	}
	return &handlerSet, nil
}

// Listen binds the consumer queue and begins processing deliveries in the background.
func (hs *HandlerSet) Listen(prefetchCount int) {
	hs.amqpClient.AddConsumer(
		hs.amqpSettings.ExchangeName,
		hs.amqpSettings.ExchangeType,
		hs.amqpSettings.QueueName,
		routingKeyPrefix+".*",
		hs.handleDelivery,
		prefetchCount,
	)
	go hs.amqpClient.Listen()
}

// Close closes a message handler set.
func (hs *HandlerSet) Close() {
	hs.amqpClient.Close()
}

// handleDelivery routes a single delivery to the handler for its action and settles the
// delivery according to the handler's error classification. Recoverable failures are
// requeued once.
func (hs *HandlerSet) handleDelivery(_ context.Context, delivery amqp.Delivery) {
	segments := strings.Split(delivery.RoutingKey, ".")
	action := segments[len(segments)-1]

	handler, ok := hs.handlerFor[action]
	if !ok {
		hs.log.Errorf("no handler registered for action %s", action)
		hs.settle(delivery.Reject(false))
		return
	}

	err := handler.HandleMessage(action, delivery)
	switch err.(type) {
	case nil:
		hs.settle(delivery.Ack(false))
	case handlers.RecoverableError:
		hs.log.WithError(err).Errorf("recoverable error handling a %s action", action)
		hs.settle(delivery.Reject(!delivery.Redelivered))
	default:
		hs.log.WithError(err).Errorf("unrecoverable error handling a %s action", action)
		hs.settle(delivery.Reject(false))
	}
}

// settle logs a failure to ack or reject a delivery.
func (hs *HandlerSet) settle(err error) {
	if err != nil {
		hs.log.WithError(err).Error("unable to settle an AMQP delivery")
	}
}
