package json

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/chatgate"
)

// envelope is the v1 wire format for a conversation snapshot.
type envelope struct {
	Version        int       `json:"version"`
	SessionID      string    `json:"session_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	Turns          []turnDTO `json:"turns"`
}

// turnDTO is the JSON representation of a Turn.
type turnDTO struct {
	Role      string    `json:"role"`
	Parts     []partDTO `json:"parts"`
	Timestamp time.Time `json:"timestamp"`
}

// partDTO is the JSON representation of a Part with a type discriminator.
// Image bytes are never written; inline images report their size instead.
type partDTO struct {
	Type     string  `json:"type"`
	Text     *string `json:"text,omitempty"`
	MimeType *string `json:"mime_type,omitempty"`
	URI      *string `json:"uri,omitempty"`
	Size     *int    `json:"size,omitempty"`
}

// MarshalConversation serializes a conversation snapshot in v1 envelope
// format.
func MarshalConversation(c chatgate.Conversation) ([]byte, error) {
	env := envelope{
		Version:        1,
		SessionID:      c.SessionID,
		CreatedAt:      c.CreatedAt,
		LastAccessedAt: c.LastAccessedAt,
		ExpiresAt:      c.ExpiresAt,
		Turns:          make([]turnDTO, len(c.History)),
	}
	for i, t := range c.History {
		parts, err := marshalParts(t.Parts)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		env.Turns[i] = turnDTO{
			Role:      string(t.Role),
			Parts:     parts,
			Timestamp: t.Timestamp,
		}
	}
	return json.Marshal(env)
}

func marshalParts(parts []chatgate.Part) ([]partDTO, error) {
	result := make([]partDTO, len(parts))
	for i, p := range parts {
		dto, err := marshalPart(p)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		result[i] = dto
	}
	return result, nil
}

func marshalPart(p chatgate.Part) (partDTO, error) {
	switch v := p.(type) {
	case chatgate.TextPart:
		return partDTO{Type: "text", Text: &v.Text}, nil
	case chatgate.ImagePart:
		dto := partDTO{Type: "image", MimeType: &v.MimeType}
		if v.Inline() {
			size := len(v.Data)
			dto.Size = &size
		} else {
			dto.URI = &v.URI
		}
		return dto, nil
	default:
		return partDTO{}, fmt.Errorf("unknown part type: %T", p)
	}
}
