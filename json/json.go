// Package json is the wire codec for the HTTP transport. It decodes ask
// requests into [chatgate.Request] values and encodes responses, errors and
// conversation snapshots as JSON DTOs.
package json

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/chatgate"
)

// askRequest is the JSON body of POST /ask.
type askRequest struct {
	SessionID string    `json:"session_id"`
	Question  *string   `json:"question,omitempty"`
	Q         *string   `json:"q,omitempty"`
	Image     *imageDTO `json:"image,omitempty"`
}

// imageDTO carries a base64-encoded image.
type imageDTO struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type,omitempty"`
}

// DecodeAskRequest reads a JSON ask request from r. Malformed JSON and
// invalid base64 fail with [chatgate.ErrInvalidInput]. The result is not
// validated; call [chatgate.Request.Validate] or let the dispatcher do it.
func DecodeAskRequest(r io.Reader) (chatgate.Request, error) {
	var dto askRequest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&dto); err != nil {
		if errors.Is(err, io.EOF) {
			return chatgate.Request{}, fmt.Errorf("request body is empty: %w", chatgate.ErrInvalidInput)
		}
		return chatgate.Request{}, fmt.Errorf("decode request: %w: %w", err, chatgate.ErrInvalidInput)
	}

	req := chatgate.Request{SessionID: dto.SessionID}
	switch {
	case dto.Question != nil:
		req.Question = *dto.Question
	case dto.Q != nil:
		req.Question = *dto.Q
	}

	if dto.Image != nil {
		data, err := decodeBase64(dto.Image.Data)
		if err != nil {
			return chatgate.Request{}, fmt.Errorf("decode image data: %v: %w", err, chatgate.ErrInvalidInput)
		}
		req.Image = &chatgate.Image{Data: data, MimeType: dto.Image.MimeType}
	}
	return req, nil
}

// decodeBase64 accepts standard base64 with or without padding, and strips
// a data URL prefix ("data:image/png;base64,") when present.
func decodeBase64(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.TrimSpace(s)
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
