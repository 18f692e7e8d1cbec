// Package protocol implements the request/response state machine for notifications
// between paired members. A request moves from pending to accepted or rejected exactly
// once; the duplicate and existence guards enforce that, and every resolution retires
// the original proposal by soft delete.
package protocol

import (
	"context"
	"database/sql"

	"github.com/sirupsen/logrus"

	"github.com/pillme/notifications/gateway"
	"github.com/pillme/notifications/model"
	"github.com/pillme/notifications/sidechannel"
)

// RecordStore describes the notification database operations used by the protocol.
type RecordStore interface {
	Begin() (*sql.Tx, error)
	Commit(tx *sql.Tx) error
	Rollback(tx *sql.Tx) error
	InsertNotification(ctx context.Context, tx *sql.Tx, notification *model.Notification) error
	GetLiveNotification(ctx context.Context, tx *sql.Tx, sender, receiver int64, kind model.Kind) (*model.Notification, error)
	GetLiveNotificationsByIDs(ctx context.Context, tx *sql.Tx, ids []string, receiver int64) ([]model.Notification, error)
	ListLiveNotifications(ctx context.Context, tx *sql.Tx, receiver int64) ([]model.Notification, error)
	RetireNotification(ctx context.Context, tx *sql.Tx, id string) (bool, error)
	RetireNotifications(ctx context.Context, tx *sql.Tx, ids []string) (int64, error)
	ConfirmNotifications(ctx context.Context, tx *sql.Tx, ids []string) (int64, error)
	CountUnreadNotifications(ctx context.Context, tx *sql.Tx, receiver int64) (int64, error)
	GetSetting(ctx context.Context, tx *sql.Tx, memberID int64) (*model.Setting, error)
	SaveSetting(ctx context.Context, tx *sql.Tx, setting *model.Setting) error
	UpdateSetting(ctx context.Context, tx *sql.Tx, setting *model.Setting) (int64, error)
	DeleteSetting(ctx context.Context, tx *sql.Tx, memberID int64) (int64, error)
	GetSettingsForTime(ctx context.Context, tx *sql.Tx, timeOfDay string) ([]model.Setting, error)
}

// Protocol orchestrates proposals, resolutions and bulk updates against the record
// store, the side channel and the dispatch gateway.
type Protocol struct {
	records RecordStore
	side    sidechannel.Store
	notify  gateway.Notifier
	log     *logrus.Entry
}

// New returns a protocol instance operating against the given collaborators.
func New(records RecordStore, side sidechannel.Store, notify gateway.Notifier, log *logrus.Entry) *Protocol {
	return &Protocol{
		records: records,
		side:    side,
		notify:  notify,
		log:     log,
	}
}
