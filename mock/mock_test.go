package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/chatgate"
	"github.com/fwojciec/chatgate/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_Generate(t *testing.T) {
	t.Parallel()
	t.Run("delegates to GenerateFn", func(t *testing.T) {
		t.Parallel()
		want := chatgate.Reply{Text: "hi", StopReason: chatgate.StopEndTurn}
		turn, err := chatgate.NewUserTurn(chatgate.TextPart{Text: "hello"})
		require.NoError(t, err)
		b := mock.Backend{
			GenerateFn: func(ctx context.Context, history []chatgate.Turn, got chatgate.Turn) (chatgate.Reply, error) {
				assert.Empty(t, history)
				assert.Equal(t, "hello", got.Text())
				return want, nil
			},
		}
		reply, err := b.Generate(context.Background(), nil, turn)
		require.NoError(t, err)
		assert.Equal(t, want, reply)
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("api error")
		b := mock.Backend{
			GenerateFn: func(context.Context, []chatgate.Turn, chatgate.Turn) (chatgate.Reply, error) {
				return chatgate.Reply{}, wantErr
			},
		}
		_, err := b.Generate(context.Background(), nil, chatgate.Turn{})
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("panics when GenerateFn not set", func(t *testing.T) {
		t.Parallel()
		b := mock.Backend{}
		assert.Panics(t, func() {
			_, _ = b.Generate(context.Background(), nil, chatgate.Turn{})
		})
	})
}

func TestUploader_Upload(t *testing.T) {
	t.Parallel()
	t.Run("delegates to UploadFn", func(t *testing.T) {
		t.Parallel()
		u := mock.Uploader{
			UploadFn: func(ctx context.Context, data []byte, mimeType string) (string, error) {
				assert.Equal(t, []byte("jpeg"), data)
				assert.Equal(t, "image/jpeg", mimeType)
				return "files/abc", nil
			},
		}
		uri, err := u.Upload(context.Background(), []byte("jpeg"), "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, "files/abc", uri)
	})

	t.Run("panics when UploadFn not set", func(t *testing.T) {
		t.Parallel()
		u := mock.Uploader{}
		assert.Panics(t, func() {
			_, _ = u.Upload(context.Background(), nil, "")
		})
	})
}

func TestNormalizer_Normalize(t *testing.T) {
	t.Parallel()
	t.Run("delegates to NormalizeFn", func(t *testing.T) {
		t.Parallel()
		want := chatgate.ImagePart{Data: []byte("jpeg"), MimeType: "image/jpeg"}
		n := mock.Normalizer{
			NormalizeFn: func(ctx context.Context, img chatgate.Image) (chatgate.ImagePart, error) {
				assert.Equal(t, "image/png", img.MimeType)
				return want, nil
			},
		}
		got, err := n.Normalize(context.Background(), chatgate.Image{Data: []byte("png"), MimeType: "image/png"})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("panics when NormalizeFn not set", func(t *testing.T) {
		t.Parallel()
		n := mock.Normalizer{}
		assert.Panics(t, func() {
			_, _ = n.Normalize(context.Background(), chatgate.Image{})
		})
	})
}
