package chatgate

import "context"

// Backend is the external, stateless generation service. Every call must
// carry the full conversational context: history holds the prior turns in
// chronological order and turn is the new user input.
//
// Implementations must not retain or mutate history.
type Backend interface {
	Generate(ctx context.Context, history []Turn, turn Turn) (Reply, error)
}

// Reply is the backend's answer to one Generate call.
type Reply struct {
	Text       string
	StopReason StopReason
	Usage      Usage
}

// Uploader stores canonical image bytes on the backend side and returns a
// URI the backend can resolve in a later Generate call.
type Uploader interface {
	Upload(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Normalizer converts a raw image of arbitrary format into a canonical
// ImagePart. Errors wrap ErrInvalidInput, ErrImageDecode, ErrImageEncode or
// ErrUpload.
type Normalizer interface {
	Normalize(ctx context.Context, img Image) (ImagePart, error)
}

// SessionStore owns the conversation state for every session.
type SessionStore interface {
	// GetOrCreate returns a snapshot of the live conversation for id,
	// creating an empty one if none exists or the previous one expired.
	// Every call refreshes the session's expiry.
	GetOrCreate(id string) Conversation

	// Append atomically appends turns to the conversation for id if it is
	// still the incarnation identified by generation. It reports false and
	// appends nothing when the session has expired or been replaced.
	Append(id string, generation uint64, turns ...Turn) bool
}
