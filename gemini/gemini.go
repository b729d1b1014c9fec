// Package gemini implements [chatgate.Backend] and [chatgate.Uploader] for
// the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between chatgate's
// turn model and the Gemini content types. Every Generate call sends the
// full history; the API itself holds no conversation state.
package gemini

const (
	defaultModel     = "gemini-1.5-flash"
	defaultMaxTokens = 8192
)
