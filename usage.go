package chatgate

// Usage tracks token consumption reported by the backend for one call.
//
// InputTokens excludes tokens served from the backend's context cache;
// those are reported in CachedTokens. Backends clamp derived values to zero.
type Usage struct {
	InputTokens  int
	OutputTokens int
	CachedTokens int
}

// Total returns all tokens billed for the call.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens + u.CachedTokens
}
