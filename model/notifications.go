package model

import "time"

// Notification represents a single notification recorded in the database. Notifications
// are never physically removed; resolving or dismissing one retires it by setting the
// Deleted flag, which keeps the history queryable while excluding the record from all
// guard checks and listings.
type Notification struct {
	ID          string
	Sender      int64
	Receiver    int64
	Kind        Kind
	Payload     string
	Confirmed   bool
	Deleted     bool
	TimeCreated time.Time
}

// ChatEvent represents a single chat message to be delivered as a push notification.
// Delivery state for chat is tracked by the chat subsystem, so chat events are rendered
// and dispatched directly and never recorded as notifications.
type ChatEvent struct {
	RoomID   int64
	Sender   int64
	Receiver int64
	Text     string
	SentAt   time.Time
}
