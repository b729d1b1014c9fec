package chatgate_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/chatgate"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid input", chatgate.ErrInvalidInput, chatgate.CodeInvalidInput},
		{"wrapped invalid input", fmt.Errorf("session_id is required: %w", chatgate.ErrInvalidInput), chatgate.CodeInvalidInput},
		{"image decode", fmt.Errorf("decode png: %w", chatgate.ErrImageDecode), chatgate.CodeImageDecode},
		{"image encode", chatgate.ErrImageEncode, chatgate.CodeImageEncode},
		{"upload", fmt.Errorf("%w: %w", chatgate.ErrUpload, errors.New("quota")), chatgate.CodeUpload},
		{"backend", fmt.Errorf("%w: %w", chatgate.ErrBackend, errors.New("503")), chatgate.CodeBackend},
		{"configuration", chatgate.ErrConfiguration, chatgate.CodeConfiguration},
		{"unknown", errors.New("boom"), chatgate.CodeInternal},
		{"cancelled", context.Canceled, chatgate.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, chatgate.ErrorCode(tt.err))
		})
	}
}

func TestIsClientError(t *testing.T) {
	t.Parallel()
	assert.True(t, chatgate.IsClientError(chatgate.ErrInvalidInput))
	assert.True(t, chatgate.IsClientError(fmt.Errorf("x: %w", chatgate.ErrImageDecode)))
	assert.True(t, chatgate.IsClientError(chatgate.ErrImageEncode))
	assert.False(t, chatgate.IsClientError(chatgate.ErrUpload))
	assert.False(t, chatgate.IsClientError(chatgate.ErrBackend))
	assert.False(t, chatgate.IsClientError(errors.New("boom")))
}
