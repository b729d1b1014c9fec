package chatgate

import "time"

// Conversation is a snapshot of the ordered history for one session.
//
// History is append-only in the store that owns it; a Conversation value
// returned by a SessionStore is a copy and never aliases the store's slice.
type Conversation struct {
	SessionID      string
	History        []Turn
	CreatedAt      time.Time
	LastAccessedAt time.Time
	ExpiresAt      time.Time

	// Generation identifies the session incarnation. A session that expires
	// and is re-created under the same id gets a different generation.
	Generation uint64
}

// Expired reports whether the conversation is past its expiry at now.
func (c Conversation) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
