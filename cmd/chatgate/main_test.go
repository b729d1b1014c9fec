package main

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/fwojciec/chatgate"
	"github.com/fwojciec/chatgate/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTrip func(*http.Request) (*http.Response, error)

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req)
}

func TestGeminiOptions_BaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		baseURL  string
		wantHost string
	}{
		{"default endpoint", "", "generativelanguage.googleapis.com"},
		{"override", "https://proxy.example/", "proxy.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var host, path string
			rt := roundTrip(func(req *http.Request) (*http.Response, error) {
				host, path = req.URL.Host, req.URL.Path
				return &http.Response{
					StatusCode: http.StatusOK,
					Header:     http.Header{"Content-Type": []string{"application/json"}},
					Body: io.NopCloser(strings.NewReader(
						`{"candidates": [{"content": {"role": "model", "parts": [{"text": "ok"}]}, "finishReason": "STOP"}]}`)),
				}, nil
			})

			cfg := chatgate.DefaultConfig()
			cfg.BaseURL = tt.baseURL
			cfg.Generation.Model = "gemini-test"
			opts := append(geminiOptions(cfg), gemini.WithHTTPClient(&http.Client{Transport: rt}))
			client, err := gemini.New(context.Background(), "k", opts...)
			require.NoError(t, err)

			turn, err := chatgate.NewUserTurn(chatgate.TextPart{Text: "hi"})
			require.NoError(t, err)
			_, err = client.Generate(context.Background(), nil, turn)
			require.NoError(t, err)

			assert.Equal(t, tt.wantHost, host)
			assert.Contains(t, path, "gemini-test:generateContent")
		})
	}
}
