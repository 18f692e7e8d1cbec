package protocol

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/pillme/notifications/db"
	"github.com/pillme/notifications/gateway"
	"github.com/pillme/notifications/model"
	"github.com/pillme/notifications/sidechannel"
)

// Resolution is the result of resolving a pending proposal.
type Resolution struct {

	// Notification is the newly recorded accept/reject notification.
	Notification *model.Notification

	// RetiredID identifies the original proposal that the resolution retired.
	RetiredID string

	// DeletionTarget is the identifier recovered from the side channel for
	// relationship-deletion requests. Empty for every other kind.
	DeletionTarget string

	// PayloadMissing is true when a relationship-deletion resolution found its side
	// channel payload expired. The resolution itself still went through; downstream
	// relationship deletion has nothing to act on and must treat the target as
	// unavailable.
	PayloadMissing bool
}

// Propose creates a pending proposal, or records a fire-and-forget notification for the
// one-way kinds. Request kinds pass through the duplicate guard; for
// relationship-deletion requests the payload is stashed in the side channel instead of
// on the record. On a dispatch failure the record remains persisted, the notification
// is returned, and the error identifies the failed delivery.
func (p *Protocol) Propose(
	ctx context.Context, kind model.Kind, sender, receiver int64, payload string,
) (*model.Notification, error) {
	wrapMsg := fmt.Sprintf("unable to propose a %s", kind)

	if !kind.IsRequest() && !kind.IsOneWay() {
		return nil, fmt.Errorf("%s: kind %s cannot be proposed", wrapMsg, kind)
	}

	// Begin a database transaction.
	tx, err := p.records.Begin()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer p.records.Rollback(tx)

	// One-way kinds are fire-and-forget and skip the guard entirely.
	if kind.IsRequest() {
		if err := p.assertNoDuplicate(ctx, tx, sender, receiver, kind); err != nil {
			return nil, err
		}
	}

	// The deletion target lives in the side channel, not on the record.
	recordPayload := payload
	if kind.UsesSideChannel() {
		recordPayload = ""
	}

	// Store the notification.
	notification := &model.Notification{
		Sender:      sender,
		Receiver:    receiver,
		Kind:        kind,
		Payload:     recordPayload,
		TimeCreated: time.Now(),
	}
	err = p.records.InsertNotification(ctx, tx, notification)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, NewDuplicateProposalError(sender, receiver, kind)
		}
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Collect what dispatch needs while the transaction is open.
	setting, err := p.records.GetSetting(ctx, tx, receiver)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	total, err := p.records.CountUnreadNotifications(ctx, tx, receiver)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Commit the transaction. A concurrent proposal that won the race surfaces here as
	// a unique index conflict.
	err = p.records.Commit(tx)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, NewDuplicateProposalError(sender, receiver, kind)
		}
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Stash the deletion target with its bounded lifetime.
	if kind.UsesSideChannel() {
		key := sidechannel.DeletionRequestKey(notification.ID)
		err = p.side.Put(ctx, key, payload, sidechannel.DeletionRequestTTL)
		if err != nil {
			return notification, errors.Wrap(err, "unable to stash the deletion payload")
		}
	}

	// Dispatch. Persistence and delivery are decoupled: the record stays either way.
	outbound, err := gateway.Render(notification, total, setting)
	if err != nil {
		return notification, errors.Wrap(err, wrapMsg)
	}
	if kind.UsesSideChannel() {
		outbound.Payload = map[string]interface{}{"dependency_id": payload}
	}
	if err := p.notify.Send(ctx, outbound); err != nil {
		return notification, NewDispatchFailedError(err)
	}

	return notification, nil
}

// Resolve accepts or rejects the pending proposal sent by originalSender to actingUser.
// The resolution is recorded as a new notification addressed back to the original
// sender, the pending proposal is retired, and for relationship-deletion requests the
// deletion target is read back from the side channel.
func (p *Protocol) Resolve(
	ctx context.Context, kind model.Kind, actingUser, originalSender int64, outcome model.Outcome,
) (*Resolution, error) {
	wrapMsg := fmt.Sprintf("unable to resolve a %s", kind)

	resolutionKind, err := kind.Resolution(outcome)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Begin a database transaction.
	tx, err := p.records.Begin()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer p.records.Rollback(tx)

	// Find the pending proposal. The acting user is the target of the original request.
	pending, err := p.lookupForResolution(ctx, tx, originalSender, actingUser, kind)
	if err != nil {
		return nil, err
	}

	// Record the resolution as its own notification so it is independently
	// dispatchable and auditable.
	notification := &model.Notification{
		Sender:      actingUser,
		Receiver:    originalSender,
		Kind:        resolutionKind,
		Payload:     pending.Payload,
		TimeCreated: time.Now(),
	}
	err = p.records.InsertNotification(ctx, tx, notification)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Recover the deletion target, which may have expired out from under the proposal.
	var deletionTarget string
	var payloadMissing bool
	if kind.UsesSideChannel() {
		var found bool
		deletionTarget, found, err = p.side.Get(ctx, sidechannel.DeletionRequestKey(pending.ID))
		if err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
		if !found {
			payloadMissing = true
			p.log.Warnf("deletion payload for notification %s expired before resolution", pending.ID)
		}
	}

	// Retire the pending proposal. Losing a race against a concurrent resolution shows
	// up here as nothing left to retire.
	retired, err := p.records.RetireNotification(ctx, tx, pending.ID)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	if !retired {
		return nil, NewProposalNotFoundError(originalSender, actingUser, kind)
	}

	// Collect what dispatch needs while the transaction is open.
	setting, err := p.records.GetSetting(ctx, tx, originalSender)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	total, err := p.records.CountUnreadNotifications(ctx, tx, originalSender)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Commit the transaction.
	err = p.records.Commit(tx)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	resolution := &Resolution{
		Notification:   notification,
		RetiredID:      pending.ID,
		DeletionTarget: deletionTarget,
		PayloadMissing: payloadMissing,
	}

	// Dispatch the resolution.
	outbound, err := gateway.Render(notification, total, setting)
	if err != nil {
		return resolution, errors.Wrap(err, wrapMsg)
	}
	if err := p.notify.Send(ctx, outbound); err != nil {
		return resolution, NewDispatchFailedError(err)
	}

	return resolution, nil
}

// Acknowledge marks a batch of notifications as confirmed. The batch must consist
// entirely of live notifications addressed to the acting user; otherwise the whole
// batch is rejected with no partial effect.
func (p *Protocol) Acknowledge(ctx context.Context, ids []string, actingUser int64) error {
	wrapMsg := "unable to acknowledge notifications"

	tx, err := p.records.Begin()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer p.records.Rollback(tx)

	matched, err := p.records.GetLiveNotificationsByIDs(ctx, tx, ids, actingUser)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if len(matched) != len(ids) {
		return NewAccessDeniedError(actingUser)
	}

	updated, err := p.records.ConfirmNotifications(ctx, tx, ids)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if updated != int64(len(ids)) {
		return NewAccessDeniedError(actingUser)
	}

	return errors.Wrap(p.records.Commit(tx), wrapMsg)
}

// Dismiss retires a batch of notifications. The matching discipline is the same as for
// Acknowledge.
func (p *Protocol) Dismiss(ctx context.Context, ids []string, actingUser int64) error {
	wrapMsg := "unable to dismiss notifications"

	tx, err := p.records.Begin()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer p.records.Rollback(tx)

	matched, err := p.records.GetLiveNotificationsByIDs(ctx, tx, ids, actingUser)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if len(matched) != len(ids) {
		return NewAccessDeniedError(actingUser)
	}

	retired, err := p.records.RetireNotifications(ctx, tx, ids)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if retired != int64(len(ids)) {
		return NewAccessDeniedError(actingUser)
	}

	return errors.Wrap(p.records.Commit(tx), wrapMsg)
}

// List returns the live notifications addressed to the acting user, newest first.
func (p *Protocol) List(ctx context.Context, actingUser int64) ([]model.Notification, error) {
	wrapMsg := "unable to list notifications"

	tx, err := p.records.Begin()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer p.records.Rollback(tx)

	notifications, err := p.records.ListLiveNotifications(ctx, tx, actingUser)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	err = p.records.Commit(tx)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return notifications, nil
}

// SendChatMessage dispatches a chat event directly, bypassing the record store. Chat
// delivery state is tracked by the chat subsystem, not this protocol.
func (p *Protocol) SendChatMessage(ctx context.Context, event *model.ChatEvent) error {
	if err := p.notify.Send(ctx, gateway.RenderChat(event)); err != nil {
		return NewDispatchFailedError(err)
	}
	return nil
}
