// Package sidechannel provides the ephemeral key/value store used to stash auxiliary
// request payloads independently of the notification records. Expiry is managed by the
// store itself; readers must treat a missing key as expired.
package sidechannel

import (
	"context"
	"time"
)

// DeletionRequestKeyPrefix is the namespace under which relationship-deletion payloads
// are stored, keyed by the owning notification ID.
const DeletionRequestKeyPrefix = "dependency:delete:request:"

// DeletionRequestTTL bounds how long a deletion payload outlives its proposal. After
// this, the payload is purged regardless of the state of the owning notification, so a
// stale proposal can't be resurrected with a dangling target.
const DeletionRequestTTL = 7 * 24 * time.Hour

// Store is an injected capability rather than ambient state so that tests can
// substitute an in-memory implementation with a controllable clock.
type Store interface {

	// Put stores a value under a key with the given time to live.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get retrieves the value stored under a key, reporting whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// RemainingTTL reports how long the value stored under a key has left to live,
	// reporting whether the key exists.
	RemainingTTL(ctx context.Context, key string) (time.Duration, bool, error)
}

// DeletionRequestKey returns the side channel key for the deletion payload owned by the
// given notification.
func DeletionRequestKey(notificationID string) string {
	return DeletionRequestKeyPrefix + notificationID
}
