package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/pillme/notifications/model"
)

var notificationColumns = []string{
	"id::text",
	"sender_id",
	"receiver_id",
	"kind",
	"payload",
	"confirmed",
	"deleted",
	"time_created",
}

// scanNotification scans a single row containing notificationColumns.
func scanNotification(row sq.RowScanner) (*model.Notification, error) {
	var notification model.Notification
	err := row.Scan(
		&notification.ID,
		&notification.Sender,
		&notification.Receiver,
		&notification.Kind,
		&notification.Payload,
		&notification.Confirmed,
		&notification.Deleted,
		&notification.TimeCreated,
	)
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// InsertNotification saves a single notification into the database, scanning the
// generated identifier into the notification structure.
func InsertNotification(ctx context.Context, tx *sql.Tx, notification *model.Notification) error {
	wrapMsg := "unable to save notification"

	// Build the statement to insert the notification.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Insert("notifications").
		Columns(
			"sender_id",
			"receiver_id",
			"kind",
			"payload",
			"confirmed",
			"deleted",
			"time_created").
		Values(
			notification.Sender,
			notification.Receiver,
			notification.Kind,
			notification.Payload,
			notification.Confirmed,
			notification.Deleted,
			notification.TimeCreated).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// Execute the insert statement, scanning the ID into the notification structure.
	row := tx.QueryRowContext(ctx, statement, args...)
	err = row.Scan(&notification.ID)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	return nil
}

// GetLiveNotification looks up the live notification matching the exact ordered
// (sender, receiver, kind) triple. Ordering matters: (A, B) and (B, A) are distinct.
// A nil notification is returned if there is no live match.
func GetLiveNotification(
	ctx context.Context, tx *sql.Tx, sender, receiver int64, kind model.Kind,
) (*model.Notification, error) {
	wrapMsg := "unable to look up the live notification"

	// Build the query.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(notificationColumns...).
		From("notifications").
		Where(sq.Eq{"sender_id": sender}).
		Where(sq.Eq{"receiver_id": receiver}).
		Where(sq.Eq{"kind": kind}).
		Where(sq.Eq{"deleted": false}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Query the database.
	notification, err := scanNotification(tx.QueryRowContext(ctx, statement, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return notification, nil
}

// GetLiveNotificationsByIDs looks up the live notifications with the given IDs that are
// addressed to the given receiver. Notifications belonging to other receivers or already
// retired are silently omitted; callers compare the result count against the request.
func GetLiveNotificationsByIDs(
	ctx context.Context, tx *sql.Tx, ids []string, receiver int64,
) ([]model.Notification, error) {
	wrapMsg := "unable to look up notifications by ID"

	// Build the query.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(notificationColumns...).
		From("notifications").
		Where(sq.Eq{"id": ids}).
		Where(sq.Eq{"receiver_id": receiver}).
		Where(sq.Eq{"deleted": false}).
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

	// Collect the notifications.
	notifications := make([]model.Notification, 0)
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
		notifications = append(notifications, *notification)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return notifications, nil
}

// ListLiveNotifications lists the live notifications addressed to the given receiver,
// newest first.
func ListLiveNotifications(ctx context.Context, tx *sql.Tx, receiver int64) ([]model.Notification, error) {
	wrapMsg := "unable to list notifications"

	// Build the query.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select(notificationColumns...).
		From("notifications").
		Where(sq.Eq{"receiver_id": receiver}).
		Where(sq.Eq{"deleted": false}).
		OrderBy("time_created DESC", "id").
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

	// Collect the notifications.
	notifications := make([]model.Notification, 0)
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, errors.Wrap(err, wrapMsg)
		}
		notifications = append(notifications, *notification)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return notifications, nil
}

// RetireNotification soft-deletes a single live notification. The update is restricted
// to live records so that two concurrent resolutions of the same pending request cannot
// both succeed; the loser of the race sees a false return value.
func RetireNotification(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	wrapMsg := "unable to retire the notification"

	// Build the update statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update("notifications").
		Set("deleted", true).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"deleted": false}).
		ToSql()
	if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}

	// Execute the update statement.
	result, err := tx.ExecContext(ctx, statement, args...)
	if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, wrapMsg)
	}

	return rowsAffected == 1, nil
}

// RetireNotifications soft-deletes the live notifications with the given IDs, returning
// the number of records retired.
func RetireNotifications(ctx context.Context, tx *sql.Tx, ids []string) (int64, error) {
	wrapMsg := "unable to retire notifications"

	// Build the update statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update("notifications").
		Set("deleted", true).
		Where(sq.Eq{"id": ids}).
		Where(sq.Eq{"deleted": false}).
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

// ConfirmNotifications marks the live notifications with the given IDs as confirmed,
// returning the number of records updated.
func ConfirmNotifications(ctx context.Context, tx *sql.Tx, ids []string) (int64, error) {
	wrapMsg := "unable to confirm notifications"

	// Build the update statement.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Update("notifications").
		Set("confirmed", true).
		Where(sq.Eq{"id": ids}).
		Where(sq.Eq{"deleted": false}).
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

// CountUnreadNotifications counts the notifications for the receiver that haven't been
// confirmed or retired.
func CountUnreadNotifications(ctx context.Context, tx *sql.Tx, receiver int64) (int64, error) {
	wrapMsg := "unable to count unread notifications"
	var total int64

	// Build the statement to count the unread notifications.
	statement, args, err := sq.StatementBuilder.
		PlaceholderFormat(sq.Dollar).
		Select("count(*)").
		From("notifications").
		Where(sq.Eq{"receiver_id": receiver}).
		Where(sq.Eq{"deleted": false}).
		Where(sq.Eq{"confirmed": false}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	// Execute the statement.
	err = tx.QueryRowContext(ctx, statement, args...).Scan(&total)
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	return total, nil
}
