package protocol

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/pillme/notifications/model"
)

// assertNoDuplicate fails if a live proposal already exists for the exact ordered
// (sender, receiver, kind) triple. The check is advisory under concurrency; the partial
// unique index in the record store backstops it, and the resulting conflict is
// translated by the caller.
func (p *Protocol) assertNoDuplicate(
	ctx context.Context, tx *sql.Tx, sender, receiver int64, kind model.Kind,
) error {
	existing, err := p.records.GetLiveNotification(ctx, tx, sender, receiver, kind)
	if err != nil {
		return errors.Wrap(err, "unable to check for a duplicate proposal")
	}
	if existing != nil {
		return NewDuplicateProposalError(sender, receiver, kind)
	}
	return nil
}

// lookupForResolution finds the pending proposal that a resolution acts on. The roles
// are swapped relative to the resolution call: a proposal sent requester→target is
// resolved by the target, so the lookup is keyed (sender=requester, receiver=target)
// while the caller is the target. Every kind resolves through this one lookup so the
// swap can't be re-derived incorrectly per call site.
func (p *Protocol) lookupForResolution(
	ctx context.Context, tx *sql.Tx, requester, target int64, kind model.Kind,
) (*model.Notification, error) {
	pending, err := p.records.GetLiveNotification(ctx, tx, requester, target, kind)
	if err != nil {
		return nil, errors.Wrap(err, "unable to look up the pending proposal")
	}
	if pending == nil {
		return nil, NewProposalNotFoundError(requester, target, kind)
	}
	return pending, nil
}
