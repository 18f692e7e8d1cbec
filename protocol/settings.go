package protocol

import (
	"context"

	"github.com/pkg/errors"

	"github.com/pillme/notifications/model"
)

// CreateSetting stores a member's notification setting.
func (p *Protocol) CreateSetting(ctx context.Context, setting *model.Setting) error {
	wrapMsg := "unable to create the notification setting"

	tx, err := p.records.Begin()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer p.records.Rollback(tx)

	err = p.records.SaveSetting(ctx, tx, setting)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return errors.Wrap(p.records.Commit(tx), wrapMsg)
}

// GetSetting returns a member's notification setting, or nil if the member hasn't
// created one. Absence is an empty response rather than an error.
func (p *Protocol) GetSetting(ctx context.Context, memberID int64) (*model.Setting, error) {
	wrapMsg := "unable to look up the notification setting"

	tx, err := p.records.Begin()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer p.records.Rollback(tx)

	setting, err := p.records.GetSetting(ctx, tx, memberID)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	err = p.records.Commit(tx)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return setting, nil
}

// UpdateSetting updates a member's notification setting.
func (p *Protocol) UpdateSetting(ctx context.Context, setting *model.Setting) error {
	wrapMsg := "unable to update the notification setting"

	tx, err := p.records.Begin()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer p.records.Rollback(tx)

	updated, err := p.records.UpdateSetting(ctx, tx, setting)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if updated == 0 {
		return NewSettingNotFoundError(setting.MemberID)
	}

	return errors.Wrap(p.records.Commit(tx), wrapMsg)
}

// DeleteSetting removes a member's notification setting.
func (p *Protocol) DeleteSetting(ctx context.Context, memberID int64) error {
	wrapMsg := "unable to delete the notification setting"

	tx, err := p.records.Begin()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer p.records.Rollback(tx)

	removed, err := p.records.DeleteSetting(ctx, tx, memberID)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if removed == 0 {
		return NewSettingNotFoundError(memberID)
	}

	return errors.Wrap(p.records.Commit(tx), wrapMsg)
}

// SettingsForTime lists the notification settings with a dose reminder scheduled for
// the given "HH:MM" time of day. The dose reminder scheduler is an external
// collaborator; it polls this and proposes one-way reminders for the members it finds.
func (p *Protocol) SettingsForTime(ctx context.Context, timeOfDay string) ([]model.Setting, error) {
	wrapMsg := "unable to list notification settings by time"

	tx, err := p.records.Begin()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer p.records.Rollback(tx)

	settings, err := p.records.GetSettingsForTime(ctx, tx, timeOfDay)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	err = p.records.Commit(tx)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return settings, nil
}
