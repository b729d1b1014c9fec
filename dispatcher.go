package chatgate

import (
	"context"
	"fmt"
	"strings"
)

// Dispatcher orchestrates one inbound request: it validates the input,
// resolves the session, normalizes any image, calls the backend with the
// full history, and records the exchange.
//
// No lock is held across the backend call. The history sent to the backend
// is a snapshot taken before the call; the user and model turns are
// appended together afterwards, so a failed request leaves no trace in the
// conversation.
type Dispatcher struct {
	store      SessionStore
	normalizer Normalizer
	backend    Backend
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(store SessionStore, normalizer Normalizer, backend Backend) *Dispatcher {
	return &Dispatcher{store: store, normalizer: normalizer, backend: backend}
}

// Dispatch runs one request to completion.
//
// If ctx is cancelled while the backend call is in flight, the reply is
// discarded and ctx.Err() is returned; nothing is appended.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	conv := d.store.GetOrCreate(req.SessionID)

	userTurn, err := d.userTurn(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ValidateTurn(userTurn); err != nil {
		return nil, err
	}

	reply, err := d.backend.Generate(ctx, conv.History, userTurn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackend, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if reply.Text == "" {
		return nil, fmt.Errorf("empty reply (stop reason %s): %w", reply.StopReason, ErrBackend)
	}

	modelTurn, err := NewModelTurn(TextPart{Text: reply.Text})
	if err != nil {
		return nil, err
	}
	if err := ValidateTurn(modelTurn); err != nil {
		return nil, fmt.Errorf("model turn: %v: %w", err, ErrBackend)
	}
	d.store.Append(req.SessionID, conv.Generation, userTurn, modelTurn)

	return &Response{
		SessionID:  req.SessionID,
		Text:       reply.Text,
		StopReason: reply.StopReason,
		Usage:      reply.Usage,
	}, nil
}

// userTurn builds the user turn with the image part, if any, before the
// question text. A blank question adds no text part.
func (d *Dispatcher) userTurn(ctx context.Context, req Request) (Turn, error) {
	var parts []Part
	if req.Image != nil {
		img, err := d.normalizer.Normalize(ctx, *req.Image)
		if err != nil {
			return Turn{}, err
		}
		parts = append(parts, img)
	}
	if strings.TrimSpace(req.Question) != "" {
		parts = append(parts, TextPart{Text: req.Question})
	}
	return NewUserTurn(parts...)
}
