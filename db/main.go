package db

import (
	"context"
	"database/sql"

	"github.com/cyverse-de/dbutil"
	"github.com/pkg/errors"

	"github.com/pillme/notifications/model"
)

// InitDatabase establishes a database connection and verifies that the database can be reached.
func InitDatabase(driverName, databaseURI string) (*sql.DB, error) {
	wrapMsg := "unable to initialize the database"

	// Create a database connector to establish the connection.
	connector, err := dbutil.NewDefaultConnector("1m")
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// Establish the database connection.
	db, err := connector.Connect(driverName, databaseURI)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	return db, nil
}

// Client bundles the notification database operations behind a single value so that
// callers can be handed a substitute implementation in tests.
type Client struct {
	db *sql.DB
}

// NewClient returns a database client for the given connection.
func NewClient(db *sql.DB) *Client {
	return &Client{db: db}
}

// Begin starts a database transaction.
func (c *Client) Begin() (*sql.Tx, error) {
	return c.db.Begin()
}

// Commit commits a database transaction.
func (c *Client) Commit(tx *sql.Tx) error {
	return tx.Commit()
}

// Rollback rolls back a database transaction.
func (c *Client) Rollback(tx *sql.Tx) error {
	return tx.Rollback()
}

// InsertNotification saves a single notification into the database.
func (c *Client) InsertNotification(ctx context.Context, tx *sql.Tx, notification *model.Notification) error {
	return InsertNotification(ctx, tx, notification)
}

// GetLiveNotification looks up the live notification for an exact (sender, receiver, kind)
// triple, returning nil if there is none.
func (c *Client) GetLiveNotification(
	ctx context.Context, tx *sql.Tx, sender, receiver int64, kind model.Kind,
) (*model.Notification, error) {
	return GetLiveNotification(ctx, tx, sender, receiver, kind)
}

// GetLiveNotificationsByIDs looks up the live notifications with the given IDs that are
// addressed to the given receiver.
func (c *Client) GetLiveNotificationsByIDs(
	ctx context.Context, tx *sql.Tx, ids []string, receiver int64,
) ([]model.Notification, error) {
	return GetLiveNotificationsByIDs(ctx, tx, ids, receiver)
}

// ListLiveNotifications lists the live notifications addressed to the given receiver.
func (c *Client) ListLiveNotifications(ctx context.Context, tx *sql.Tx, receiver int64) ([]model.Notification, error) {
	return ListLiveNotifications(ctx, tx, receiver)
}

// RetireNotification soft-deletes a single live notification, reporting whether a live
// record was actually retired.
func (c *Client) RetireNotification(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	return RetireNotification(ctx, tx, id)
}

// RetireNotifications soft-deletes the live notifications with the given IDs, returning
// the number of records retired.
func (c *Client) RetireNotifications(ctx context.Context, tx *sql.Tx, ids []string) (int64, error) {
	return RetireNotifications(ctx, tx, ids)
}

// ConfirmNotifications marks the live notifications with the given IDs as confirmed,
// returning the number of records updated.
func (c *Client) ConfirmNotifications(ctx context.Context, tx *sql.Tx, ids []string) (int64, error) {
	return ConfirmNotifications(ctx, tx, ids)
}

// CountUnreadNotifications counts the notifications for the receiver that have not been
// confirmed or retired.
func (c *Client) CountUnreadNotifications(ctx context.Context, tx *sql.Tx, receiver int64) (int64, error) {
	return CountUnreadNotifications(ctx, tx, receiver)
}

// GetSetting looks up a member's notification setting, returning nil if there is none.
func (c *Client) GetSetting(ctx context.Context, tx *sql.Tx, memberID int64) (*model.Setting, error) {
	return GetSetting(ctx, tx, memberID)
}

// SaveSetting saves a member's notification setting.
func (c *Client) SaveSetting(ctx context.Context, tx *sql.Tx, setting *model.Setting) error {
	return SaveSetting(ctx, tx, setting)
}

// UpdateSetting updates a member's notification setting, returning the number of records
// updated.
func (c *Client) UpdateSetting(ctx context.Context, tx *sql.Tx, setting *model.Setting) (int64, error) {
	return UpdateSetting(ctx, tx, setting)
}

// DeleteSetting removes a member's notification setting, returning the number of records
// removed.
func (c *Client) DeleteSetting(ctx context.Context, tx *sql.Tx, memberID int64) (int64, error) {
	return DeleteSetting(ctx, tx, memberID)
}

// GetSettingsForTime lists the notification settings with a reminder scheduled for the
// given time of day.
func (c *Client) GetSettingsForTime(ctx context.Context, tx *sql.Tx, timeOfDay string) ([]model.Setting, error) {
	return GetSettingsForTime(ctx, tx, timeOfDay)
}
