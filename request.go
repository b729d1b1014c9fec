package chatgate

// Request is one inbound exchange for a session. At least one of Question
// or Image must be present.
type Request struct {
	SessionID string
	Question  string
	Image     *Image
}

// Image is a raw image payload of arbitrary format as received from the
// caller. MimeType is the declared type and may be empty.
type Image struct {
	Data     []byte
	MimeType string
}

// Response is the outcome of a successful dispatch.
type Response struct {
	SessionID  string
	Text       string
	StopReason StopReason
	Usage      Usage
}
