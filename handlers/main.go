package handlers

import (
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// MessageHandler describes the interface used to handle AMQP action deliveries.
type MessageHandler interface {
	HandleMessage(action string, delivery amqp.Delivery) error
}

// Action names, matched against the final segment of the delivery routing key.
const (
	ActionPropose     = "propose"
	ActionResolve     = "resolve"
	ActionAcknowledge = "acknowledge"
	ActionDismiss     = "dismiss"
	ActionChat        = "chat"
)

// InitMessageHandlers returns a map from action name to message handler.
func InitMessageHandlers(protocol ProtocolAPI, log *logrus.Entry) map[string]MessageHandler {
	actions := NewActions(protocol, log)
	return map[string]MessageHandler{
		ActionPropose:     actions,
		ActionResolve:     actions,
		ActionAcknowledge: actions,
		ActionDismiss:     actions,
		ActionChat:        actions,
	}
}
