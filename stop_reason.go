package chatgate

// StopReason indicates why the backend stopped generating.
type StopReason string

const (
	StopEndTurn StopReason = "end_turn"
	StopLength  StopReason = "length"
	StopSafety  StopReason = "safety"
	StopUnknown StopReason = "unknown"
)
