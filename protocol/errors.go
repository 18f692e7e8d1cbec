package protocol

import (
	"errors"
	"fmt"

	"github.com/pillme/notifications/model"
)

// DuplicateProposalError indicates that a proposal was made while a live proposal for
// the same ordered (sender, receiver, kind) triple was still pending.
type DuplicateProposalError struct {
	Sender   int64
	Receiver int64
	Kind     model.Kind
}

// Error returns the error message for a DuplicateProposalError.
func (e DuplicateProposalError) Error() string {
	return fmt.Sprintf("a pending %s from %d to %d already exists", e.Kind, e.Sender, e.Receiver)
}

// NewDuplicateProposalError returns a new error indicating a duplicate proposal.
func NewDuplicateProposalError(sender, receiver int64, kind model.Kind) DuplicateProposalError {
	return DuplicateProposalError{Sender: sender, Receiver: receiver, Kind: kind}
}

// IsDuplicateProposal returns true if the error indicates a duplicate proposal.
func IsDuplicateProposal(err error) bool {
	var target DuplicateProposalError
	return errors.As(err, &target)
}

// ProposalNotFoundError indicates that a resolution was attempted with no matching live
// proposal, either because none was ever made or because it was already resolved.
type ProposalNotFoundError struct {
	Requester int64
	Target    int64
	Kind      model.Kind
}

// Error returns the error message for a ProposalNotFoundError.
func (e ProposalNotFoundError) Error() string {
	return fmt.Sprintf("no pending %s from %d to %d was found", e.Kind, e.Requester, e.Target)
}

// NewProposalNotFoundError returns a new error indicating a missing proposal.
func NewProposalNotFoundError(requester, target int64, kind model.Kind) ProposalNotFoundError {
	return ProposalNotFoundError{Requester: requester, Target: target, Kind: kind}
}

// IsProposalNotFound returns true if the error indicates a missing proposal.
func IsProposalNotFound(err error) bool {
	var target ProposalNotFoundError
	return errors.As(err, &target)
}

// AccessDeniedError indicates that a bulk acknowledge or dismiss referenced
// notifications that are not owned by the caller or are already retired. The whole
// batch is rejected with no partial effect.
type AccessDeniedError struct {
	User int64
}

// Error returns the error message for an AccessDeniedError.
func (e AccessDeniedError) Error() string {
	return fmt.Sprintf("the notification batch contains records not available to user %d", e.User)
}

// NewAccessDeniedError returns a new error indicating an inaccessible batch.
func NewAccessDeniedError(user int64) AccessDeniedError {
	return AccessDeniedError{User: user}
}

// IsAccessDenied returns true if the error indicates an inaccessible batch.
func IsAccessDenied(err error) bool {
	var target AccessDeniedError
	return errors.As(err, &target)
}

// DispatchFailedError indicates that the external notifier refused or failed to deliver
// a message. The notification record, if any, remains persisted.
type DispatchFailedError struct {
	Cause error
}

// Error returns the error message for a DispatchFailedError.
func (e DispatchFailedError) Error() string {
	return fmt.Sprintf("unable to dispatch the notification: %s", e.Cause.Error())
}

// Unwrap returns the underlying notifier error.
func (e DispatchFailedError) Unwrap() error {
	return e.Cause
}

// NewDispatchFailedError returns a new error wrapping a notifier failure.
func NewDispatchFailedError(cause error) DispatchFailedError {
	return DispatchFailedError{Cause: cause}
}

// IsDispatchFailed returns true if the error indicates a notifier failure.
func IsDispatchFailed(err error) bool {
	var target DispatchFailedError
	return errors.As(err, &target)
}

// SettingNotFoundError indicates that a member's notification setting was expected to
// exist and didn't.
type SettingNotFoundError struct {
	MemberID int64
}

// Error returns the error message for a SettingNotFoundError.
func (e SettingNotFoundError) Error() string {
	return fmt.Sprintf("no notification setting exists for member %d", e.MemberID)
}

// NewSettingNotFoundError returns a new error indicating a missing setting.
func NewSettingNotFoundError(memberID int64) SettingNotFoundError {
	return SettingNotFoundError{MemberID: memberID}
}

// IsSettingNotFound returns true if the error indicates a missing setting.
func IsSettingNotFound(err error) bool {
	var target SettingNotFoundError
	return errors.As(err, &target)
}
