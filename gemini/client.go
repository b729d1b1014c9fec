package gemini

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fwojciec/chatgate"
	"google.golang.org/genai"
)

// Interface compliance checks.
var (
	_ chatgate.Backend  = (*Client)(nil)
	_ chatgate.Uploader = (*Client)(nil)
)

// Client implements [chatgate.Backend] and [chatgate.Uploader] for the
// Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
	gen    chatgate.GenerationConfig

	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-1.5-flash.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithGenerationConfig sets the sampling parameters and system prompt sent
// with every request. A non-empty Model in cfg also overrides the model.
func WithGenerationConfig(cfg chatgate.GenerationConfig) Option {
	return func(c *Client) {
		c.gen = cfg
		if cfg.Model != "" {
			c.model = cfg.Model
		}
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required: %w", chatgate.ErrConfiguration)
	}
	c := &Client{model: defaultModel}
	for _, o := range opts {
		o(c)
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.client = gc
	return c, nil
}

// Model returns the model ID requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Generate sends history followed by turn to the model and returns the
// reply.
func (c *Client) Generate(ctx context.Context, history []chatgate.Turn, turn chatgate.Turn) (chatgate.Reply, error) {
	contents := ConvertTurns(append(history[:len(history):len(history)], turn))
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, BuildConfig(c.gen))
	if err != nil {
		return chatgate.Reply{}, fmt.Errorf("gemini: %w", err)
	}
	return ReplyFromResponse(resp), nil
}

// Upload stores data in the Gemini file store and returns its URI.
func (c *Client) Upload(ctx context.Context, data []byte, mimeType string) (string, error) {
	f, err := c.client.Files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{
		MIMEType: mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("gemini: upload: %w", err)
	}
	if f == nil || f.URI == "" {
		return "", fmt.Errorf("gemini: upload returned no file uri")
	}
	return f.URI, nil
}

// BuildConfig converts generation settings to a genai request config.
// Exported for testing.
func BuildConfig(gen chatgate.GenerationConfig) *genai.GenerateContentConfig {
	maxTokens := gen.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(maxTokens),
		ResponseMIMEType: gen.ResponseMIMEType,
	}

	if gen.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: gen.SystemPrompt}},
		}
	}

	config.Temperature = toFloat32(gen.Temperature)
	config.TopP = toFloat32(gen.TopP)
	config.TopK = toFloat32(gen.TopK)

	return config
}

func toFloat32(v *float64) *float32 {
	if v == nil {
		return nil
	}
	f := float32(*v)
	return &f
}

// ConvertTurns converts chatgate Turns to genai Contents.
// Exported for testing.
func ConvertTurns(turns []chatgate.Turn) []*genai.Content {
	result := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role == chatgate.RoleModel {
			role = "model"
		}
		result = append(result, &genai.Content{
			Role:  role,
			Parts: convertParts(t.Parts),
		})
	}
	return result
}

func convertParts(parts []chatgate.Part) []*genai.Part {
	var out []*genai.Part
	for _, p := range parts {
		switch v := p.(type) {
		case chatgate.TextPart:
			out = append(out, &genai.Part{Text: v.Text})
		case chatgate.ImagePart:
			if v.Inline() {
				out = append(out, &genai.Part{
					InlineData: &genai.Blob{
						MIMEType: v.MimeType,
						Data:     v.Data,
					},
				})
			} else {
				out = append(out, &genai.Part{
					FileData: &genai.FileData{
						MIMEType: v.MimeType,
						FileURI:  v.URI,
					},
				})
			}
		}
	}
	return out
}

// ReplyFromResponse extracts the text, stop reason and usage from a
// response. Only the first candidate is considered; thought parts are
// skipped.
// Exported for testing.
func ReplyFromResponse(resp *genai.GenerateContentResponse) chatgate.Reply {
	var reply chatgate.Reply
	if resp == nil {
		reply.StopReason = chatgate.StopUnknown
		return reply
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		cand := resp.Candidates[0]
		if cand.Content != nil {
			var sb strings.Builder
			for _, p := range cand.Content.Parts {
				if p == nil || p.Thought {
					continue
				}
				sb.WriteString(p.Text)
			}
			reply.Text = sb.String()
		}
		reply.StopReason = mapFinishReason(cand.FinishReason)
	} else if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		reply.StopReason = chatgate.StopSafety
	} else {
		reply.StopReason = chatgate.StopUnknown
	}

	if u := resp.UsageMetadata; u != nil {
		// PromptTokenCount includes cached tokens.
		cached := int(u.CachedContentTokenCount)
		reply.Usage = chatgate.Usage{
			InputTokens:  max(0, int(u.PromptTokenCount)-cached),
			OutputTokens: int(u.CandidatesTokenCount),
			CachedTokens: cached,
		}
	}
	return reply
}

func mapFinishReason(r genai.FinishReason) chatgate.StopReason {
	switch r {
	case genai.FinishReasonStop, "":
		return chatgate.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return chatgate.StopLength
	case genai.FinishReasonSafety,
		genai.FinishReasonRecitation,
		genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII:
		return chatgate.StopSafety
	default:
		return chatgate.StopUnknown
	}
}
