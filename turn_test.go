package chatgate_test

import (
	"testing"
	"time"

	"github.com/fwojciec/chatgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Values(t *testing.T) {
	t.Parallel()
	assert.Equal(t, chatgate.Role("user"), chatgate.RoleUser)
	assert.Equal(t, chatgate.Role("model"), chatgate.RoleModel)
}

func TestStopReason_Values(t *testing.T) {
	t.Parallel()
	assert.Equal(t, chatgate.StopReason("end_turn"), chatgate.StopEndTurn)
	assert.Equal(t, chatgate.StopReason("length"), chatgate.StopLength)
	assert.Equal(t, chatgate.StopReason("safety"), chatgate.StopSafety)
	assert.Equal(t, chatgate.StopReason("unknown"), chatgate.StopUnknown)
}

func TestUsage_Total(t *testing.T) {
	t.Parallel()
	var zero chatgate.Usage
	assert.Equal(t, 0, zero.Total())

	u := chatgate.Usage{InputTokens: 10, OutputTokens: 5, CachedTokens: 3}
	assert.Equal(t, 18, u.Total())
}

func TestNewUserTurn(t *testing.T) {
	t.Parallel()

	t.Run("sets role and parts", func(t *testing.T) {
		t.Parallel()
		before := time.Now()
		turn, err := chatgate.NewUserTurn(
			chatgate.ImagePart{Data: []byte{0xff}, MimeType: "image/jpeg"},
			chatgate.TextPart{Text: "what is this?"},
		)
		require.NoError(t, err)
		assert.Equal(t, chatgate.RoleUser, turn.Role)
		require.Len(t, turn.Parts, 2)
		assert.IsType(t, chatgate.ImagePart{}, turn.Parts[0])
		assert.IsType(t, chatgate.TextPart{}, turn.Parts[1])
		assert.False(t, turn.Timestamp.Before(before))
	})

	t.Run("empty parts fail", func(t *testing.T) {
		t.Parallel()
		_, err := chatgate.NewUserTurn()
		assert.ErrorIs(t, err, chatgate.ErrInvalidInput)
	})

	t.Run("nil part fails", func(t *testing.T) {
		t.Parallel()
		_, err := chatgate.NewUserTurn(chatgate.TextPart{Text: "a"}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, chatgate.ErrInvalidInput)
		assert.Contains(t, err.Error(), "part 1")
	})

	t.Run("copies parts", func(t *testing.T) {
		t.Parallel()
		parts := []chatgate.Part{chatgate.TextPart{Text: "original"}}
		turn, err := chatgate.NewUserTurn(parts...)
		require.NoError(t, err)
		parts[0] = chatgate.TextPart{Text: "changed"}
		assert.Equal(t, "original", turn.Text())
	})
}

func TestNewModelTurn(t *testing.T) {
	t.Parallel()

	turn, err := chatgate.NewModelTurn(chatgate.TextPart{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, chatgate.RoleModel, turn.Role)
	assert.Equal(t, "hi", turn.Text())

	_, err = chatgate.NewModelTurn()
	assert.ErrorIs(t, err, chatgate.ErrInvalidInput)
}

func TestTurn_Text(t *testing.T) {
	t.Parallel()
	turn := chatgate.Turn{Role: chatgate.RoleUser, Parts: []chatgate.Part{
		chatgate.TextPart{Text: "hello "},
		chatgate.ImagePart{URI: "files/x", MimeType: "image/jpeg"},
		chatgate.TextPart{Text: "world"},
	}}
	assert.Equal(t, "hello world", turn.Text())
}

func TestImagePart_Inline(t *testing.T) {
	t.Parallel()
	assert.True(t, chatgate.ImagePart{Data: []byte{1}}.Inline())
	assert.False(t, chatgate.ImagePart{URI: "files/x"}.Inline())
}

func TestConversation_Expired(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := chatgate.Conversation{ExpiresAt: at}

	assert.False(t, c.Expired(at.Add(-time.Second)))
	assert.False(t, c.Expired(at), "expiry is strictly after expires_at")
	assert.True(t, c.Expired(at.Add(time.Nanosecond)))
}
