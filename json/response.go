package json

import (
	"encoding/json"

	"github.com/fwojciec/chatgate"
)

// responseDTO is the JSON representation of a successful ask.
type responseDTO struct {
	SessionID  string   `json:"session_id"`
	Response   string   `json:"response"`
	StopReason string   `json:"stop_reason,omitempty"`
	Usage      usageDTO `json:"usage"`
	HTML       *string  `json:"html,omitempty"`
}

type usageDTO struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	CachedTokens int `json:"cached_tokens,omitempty"`
}

// errorDTO is the JSON representation of a failed request.
type errorDTO struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// sessionDTO is returned when a session id is allocated.
type sessionDTO struct {
	SessionID string `json:"session_id"`
}

// MarshalResponse serializes a dispatch response. html is included only
// when non-empty.
func MarshalResponse(resp chatgate.Response, html string) ([]byte, error) {
	dto := responseDTO{
		SessionID:  resp.SessionID,
		Response:   resp.Text,
		StopReason: string(resp.StopReason),
		Usage:      toUsageDTO(resp.Usage),
	}
	if html != "" {
		dto.HTML = &html
	}
	return json.Marshal(dto)
}

// MarshalError serializes an error body {"error": code, "message": message}.
func MarshalError(code, message string) ([]byte, error) {
	return json.Marshal(errorDTO{Error: code, Message: message})
}

// MarshalSessionID serializes a freshly allocated session id.
func MarshalSessionID(id string) ([]byte, error) {
	return json.Marshal(sessionDTO{SessionID: id})
}

func toUsageDTO(u chatgate.Usage) usageDTO {
	return usageDTO{
		InputTokens:  u.InputTokens,
		OutputTokens: u.OutputTokens,
		CachedTokens: u.CachedTokens,
	}
}
