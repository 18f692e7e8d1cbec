package protocol

import (
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/pillme/notifications/gateway"
	"github.com/pillme/notifications/model"
	"github.com/pillme/notifications/sidechannel"
)

// MockRecordStore provides an in-memory implementation of the record store, including
// the partial unique index over live pending requests.
type MockRecordStore struct {
	BeginCalled    int
	CommitCalled   int
	RollbackCalled int

	// InsertError, when set, is returned by the next insert.
	InsertError error

	Notifications []*model.Notification
	Settings      map[int64]*model.Setting
}

// NewMockRecordStore creates a new mock record store for testing.
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{
		Notifications: nil,
		Settings:      make(map[int64]*model.Setting),
	}
}

// Begin records the fact that it was called.
func (c *MockRecordStore) Begin() (*sql.Tx, error) {
	c.BeginCalled++
	return nil, nil
}

// Commit records the fact that it was called.
func (c *MockRecordStore) Commit(*sql.Tx) error {
	c.CommitCalled++
	return nil
}

// Rollback records the fact that it was called.
func (c *MockRecordStore) Rollback(*sql.Tx) error {
	c.RollbackCalled++
	return nil
}

// InsertNotification stores a copy of the notification, enforcing the live pending
// request uniqueness the way the database index would.
func (c *MockRecordStore) InsertNotification(
	_ context.Context, _ *sql.Tx, notification *model.Notification,
) error {
	if c.InsertError != nil {
		err := c.InsertError
		c.InsertError = nil
		return err
	}
	if notification.Kind.IsRequest() {
		for _, existing := range c.Notifications {
			if !existing.Deleted &&
				existing.Sender == notification.Sender &&
				existing.Receiver == notification.Receiver &&
				existing.Kind == notification.Kind {
				return &pq.Error{Code: "23505"}
			}
		}
	}
	notification.ID = uuid.NewString()
	stored := *notification
	c.Notifications = append(c.Notifications, &stored)
	return nil
}

func (c *MockRecordStore) GetLiveNotification(
	_ context.Context, _ *sql.Tx, sender, receiver int64, kind model.Kind,
) (*model.Notification, error) {
	for _, n := range c.Notifications {
		if !n.Deleted && n.Sender == sender && n.Receiver == receiver && n.Kind == kind {
			found := *n
			return &found, nil
		}
	}
	return nil, nil
}

func (c *MockRecordStore) GetLiveNotificationsByIDs(
	_ context.Context, _ *sql.Tx, ids []string, receiver int64,
) ([]model.Notification, error) {
	wanted := make(map[string]bool)
	for _, id := range ids {
		wanted[id] = true
	}
	matched := make([]model.Notification, 0)
	for _, n := range c.Notifications {
		if !n.Deleted && n.Receiver == receiver && wanted[n.ID] {
			matched = append(matched, *n)
		}
	}
	return matched, nil
}

func (c *MockRecordStore) ListLiveNotifications(
	_ context.Context, _ *sql.Tx, receiver int64,
) ([]model.Notification, error) {
	matched := make([]model.Notification, 0)
	for _, n := range c.Notifications {
		if !n.Deleted && n.Receiver == receiver {
			matched = append(matched, *n)
		}
	}
	return matched, nil
}

func (c *MockRecordStore) RetireNotification(_ context.Context, _ *sql.Tx, id string) (bool, error) {
	for _, n := range c.Notifications {
		if !n.Deleted && n.ID == id {
			n.Deleted = true
			return true, nil
		}
	}
	return false, nil
}

func (c *MockRecordStore) RetireNotifications(_ context.Context, _ *sql.Tx, ids []string) (int64, error) {
	var retired int64
	for _, id := range ids {
		ok, _ := c.RetireNotification(nil, nil, id)
		if ok {
			retired++
		}
	}
	return retired, nil
}

func (c *MockRecordStore) ConfirmNotifications(_ context.Context, _ *sql.Tx, ids []string) (int64, error) {
	wanted := make(map[string]bool)
	for _, id := range ids {
		wanted[id] = true
	}
	var confirmed int64
	for _, n := range c.Notifications {
		if !n.Deleted && wanted[n.ID] {
			n.Confirmed = true
			confirmed++
		}
	}
	return confirmed, nil
}

func (c *MockRecordStore) CountUnreadNotifications(
	_ context.Context, _ *sql.Tx, receiver int64,
) (int64, error) {
	var total int64
	for _, n := range c.Notifications {
		if !n.Deleted && !n.Confirmed && n.Receiver == receiver {
			total++
		}
	}
	return total, nil
}

func (c *MockRecordStore) GetSetting(_ context.Context, _ *sql.Tx, memberID int64) (*model.Setting, error) {
	setting, ok := c.Settings[memberID]
	if !ok {
		return nil, nil
	}
	found := *setting
	return &found, nil
}

func (c *MockRecordStore) SaveSetting(_ context.Context, _ *sql.Tx, setting *model.Setting) error {
	setting.ID = uuid.NewString()
	stored := *setting
	c.Settings[setting.MemberID] = &stored
	return nil
}

func (c *MockRecordStore) UpdateSetting(_ context.Context, _ *sql.Tx, setting *model.Setting) (int64, error) {
	existing, ok := c.Settings[setting.MemberID]
	if !ok {
		return 0, nil
	}
	updated := *setting
	updated.ID = existing.ID
	c.Settings[setting.MemberID] = &updated
	return 1, nil
}

func (c *MockRecordStore) DeleteSetting(_ context.Context, _ *sql.Tx, memberID int64) (int64, error) {
	if _, ok := c.Settings[memberID]; !ok {
		return 0, nil
	}
	delete(c.Settings, memberID)
	return 1, nil
}

func (c *MockRecordStore) GetSettingsForTime(
	_ context.Context, _ *sql.Tx, timeOfDay string,
) ([]model.Setting, error) {
	matched := make([]model.Setting, 0)
	for _, setting := range c.Settings {
		if setting.Morning == timeOfDay || setting.Lunch == timeOfDay ||
			setting.Dinner == timeOfDay || setting.Sleep == timeOfDay {
			matched = append(matched, *setting)
		}
	}
	return matched, nil
}

// LiveByKind returns the live notifications with the given kind, for assertions.
func (c *MockRecordStore) LiveByKind(kind model.Kind) []*model.Notification {
	matched := make([]*model.Notification, 0)
	for _, n := range c.Notifications {
		if !n.Deleted && n.Kind == kind {
			matched = append(matched, n)
		}
	}
	return matched
}

// MockNotifier stores the outbound messages it receives for later inspection.
type MockNotifier struct {
	Sent      []*gateway.Outbound
	SendError error
}

// NewMockNotifier creates a new mock notifier for testing.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send stores a copy of the outbound message, or fails if a failure was requested.
func (n *MockNotifier) Send(_ context.Context, outbound *gateway.Outbound) error {
	if n.SendError != nil {
		return n.SendError
	}
	n.Sent = append(n.Sent, outbound)
	return nil
}

// fakeClock is a manually advanced clock for expiry tests.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// testProtocol bundles a protocol instance with its mock collaborators.
type testProtocol struct {
	protocol *Protocol
	records  *MockRecordStore
	notifier *MockNotifier
	side     *sidechannel.MemoryStore
	clock    *fakeClock
}

func newTestProtocol() *testProtocol {
	records := NewMockRecordStore()
	notifier := NewMockNotifier()
	clock := &fakeClock{current: time.Unix(1594336370, 0)}
	side := sidechannel.NewMemoryStoreWithClock(clock.Now)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &testProtocol{
		protocol: New(records, side, notifier, logrus.NewEntry(logger)),
		records:  records,
		notifier: notifier,
		side:     side,
		clock:    clock,
	}
}
