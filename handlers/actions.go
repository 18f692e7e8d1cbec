package handlers

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/pillme/notifications/common"
	"github.com/pillme/notifications/model"
	"github.com/pillme/notifications/protocol"
)

// ProtocolAPI describes the protocol operations invoked by the message handlers.
type ProtocolAPI interface {
	Propose(ctx context.Context, kind model.Kind, sender, receiver int64, payload string) (*model.Notification, error)
	Resolve(ctx context.Context, kind model.Kind, actingUser, originalSender int64, outcome model.Outcome) (*protocol.Resolution, error)
	Acknowledge(ctx context.Context, ids []string, actingUser int64) error
	Dismiss(ctx context.Context, ids []string, actingUser int64) error
	SendChatMessage(ctx context.Context, event *model.ChatEvent) error
}

// ActionRequest represents a deserialized request protocol action.
type ActionRequest struct {
	Kind     string   `json:"kind"`
	Sender   int64    `json:"sender"`
	Receiver int64    `json:"receiver"`
	Payload  string   `json:"payload"`
	Outcome  string   `json:"outcome"`
	IDs      []string `json:"ids"`
	User     int64    `json:"user"`
}

// ChatRequest represents a deserialized chat message event.
type ChatRequest struct {
	RoomID    int64  `json:"room_id"`
	Sender    int64  `json:"sender"`
	Receiver  int64  `json:"receiver"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Actions is a message handler for request protocol action events.
type Actions struct {
	protocol ProtocolAPI
	log      *logrus.Entry
}

// NewActions returns a new action event handler.
func NewActions(protocol ProtocolAPI, log *logrus.Entry) *Actions {
	return &Actions{protocol: protocol, log: log}
}

// HandleMessage handles a single AMQP delivery.
func (a *Actions) HandleMessage(action string, delivery amqp.Delivery) error {
	ctx := context.Background()

	if action == ActionChat {
		return a.handleChat(ctx, delivery)
	}

	// Parse the message body.
	var request ActionRequest
	err := json.Unmarshal(delivery.Body, &request)
	if err != nil {
		return NewUnrecoverableError("unable to parse message body: %s", err.Error())
	}

	switch action {
	case ActionPropose:
		_, err = a.protocol.Propose(ctx, model.Kind(request.Kind), request.Sender, request.Receiver, request.Payload)
	case ActionResolve:
		_, err = a.protocol.Resolve(
			ctx, model.Kind(request.Kind), request.User, request.Sender, model.Outcome(request.Outcome),
		)
	case ActionAcknowledge:
		err = a.protocol.Acknowledge(ctx, request.IDs, request.User)
	case ActionDismiss:
		err = a.protocol.Dismiss(ctx, request.IDs, request.User)
	default:
		return NewUnrecoverableError("unrecognized action: %s", action)
	}

	return a.classify(err)
}

// handleChat dispatches a chat message event directly; nothing is persisted for chat.
func (a *Actions) handleChat(ctx context.Context, delivery amqp.Delivery) error {
	var request ChatRequest
	err := json.Unmarshal(delivery.Body, &request)
	if err != nil {
		return NewUnrecoverableError("unable to parse message body: %s", err.Error())
	}

	sentAt, err := common.ParseTimestamp(request.Timestamp)
	if err != nil {
		return NewUnrecoverableError("unable to parse timestamp: %s", err.Error())
	}

	err = a.protocol.SendChatMessage(ctx, &model.ChatEvent{
		RoomID:   request.RoomID,
		Sender:   request.Sender,
		Receiver: request.Receiver,
		Text:     request.Text,
		SentAt:   sentAt,
	})
	return a.classify(err)
}

// classify separates protocol violations, which retrying a delivery can never fix, from
// transient failures, which a requeue may. A dispatch failure is unrecoverable here
// because the record was already persisted; replaying the delivery would only trip the
// duplicate guard.
func (a *Actions) classify(err error) error {
	if err == nil {
		return nil
	}
	if protocol.IsDuplicateProposal(err) ||
		protocol.IsProposalNotFound(err) ||
		protocol.IsAccessDenied(err) ||
		protocol.IsSettingNotFound(err) {
		return NewUnrecoverableError(err.Error())
	}
	if protocol.IsDispatchFailed(err) {
		a.log.WithError(err).Warn("notification record persisted but delivery failed")
		return NewUnrecoverableError(err.Error())
	}
	return NewRecoverableError(err.Error())
}
