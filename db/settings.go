package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/pillme/notifications/model"
)

var settingColumns = []string{
	"id::text",
	"member_id",
	"morning",
	"lunch",
	"dinner",
	"sleep",
	"email",
	"email_address",
}

func scanSetting(row sq.RowScanner) (*model.Setting, error) {
	var setting model.Setting
	err := row.Scan(
		&setting.ID,
		&setting.MemberID,
		&setting.Morning,
		&setting.Lunch,
		&setting.Dinner,
		&setting.Sleep,
		&setting.Email,
		&setting.EmailAddress,
	)
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetSetting looks up a member's notification setting. A nil setting is returned if the
// member hasn't created one.
func GetSetting(ctx context.Context, tx *sql.Tx, memberID int64) (*model.Setting, error) {
	wrapMsg := "unable to look up the notification setting"

	// Build the query.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(settingColumns...).
		From("notification_settings").
		Where(sq.Eq{"member_id": memberID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	setting, err := scanSetting(tx.QueryRowContext(ctx, statement, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return setting, nil
}

// SaveSetting saves a member's notification setting, scanning the generated identifier
// into the setting structure.
func SaveSetting(ctx context.Context, tx *sql.Tx, setting *model.Setting) error {
	wrapMsg := "unable to save the notification setting"

	// Build the statement to insert the setting.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert("notification_settings").
		Columns("member_id", "morning", "lunch", "dinner", "sleep", "email", "email_address").
		Values(
			setting.MemberID,
			setting.Morning,
			setting.Lunch,
			setting.Dinner,
			setting.Sleep,
			setting.Email,
			setting.EmailAddress).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the insert statement, scanning the ID into the setting structure.
	row := tx.QueryRowContext(ctx, statement, args...)
	err = row.Scan(&setting.ID)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// UpdateSetting updates a member's notification setting, returning the number of records
// updated.
func UpdateSetting(ctx context.Context, tx *sql.Tx, setting *model.Setting) (int64, error) {
	wrapMsg := "unable to update the notification setting"

	// Build the update statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update("notification_settings").
		Set("morning", setting.Morning).
		Set("lunch", setting.Lunch).
		Set("dinner", setting.Dinner).
		Set("sleep", setting.Sleep).
		Set("email", setting.Email).
		Set("email_address", setting.EmailAddress).
		Where(sq.Eq{"member_id": setting.MemberID}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	// Execute the update statement.
	result, err := tx.ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	return rowsAffected, nil
}

// DeleteSetting removes a member's notification setting, returning the number of records
// removed. Settings carry no history, so this is a hard delete.
func DeleteSetting(ctx context.Context, tx *sql.Tx, memberID int64) (int64, error) {
	wrapMsg := "unable to delete the notification setting"

	// Build the delete statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Delete("notification_settings").
		Where(sq.Eq{"member_id": memberID}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	// Execute the delete statement.
	result, err := tx.ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	return rowsAffected, nil
}

// GetSettingsForTime lists the notification settings with a dose reminder scheduled for
// the given "HH:MM" time of day. The external scheduler polls this once per minute.
func GetSettingsForTime(ctx context.Context, tx *sql.Tx, timeOfDay string) ([]model.Setting, error) {
	wrapMsg := "unable to list notification settings by time"

	// Build the query.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(settingColumns...).
		From("notification_settings").
		Where(sq.Or{
			sq.Eq{"morning": timeOfDay},
			sq.Eq{"lunch": timeOfDay},
			sq.Eq{"dinner": timeOfDay},
			sq.Eq{"sleep": timeOfDay},
		}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	rows, err := tx.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	defer rows.Close()

	// Collect the settings.
	settings := make([]model.Setting, 0)
	for rows.Next() {
		setting, err := scanSetting(rows)
		if err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
		settings = append(settings, *setting)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return settings, nil
}
