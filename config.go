package chatgate

import (
	"fmt"
	"time"
)

// ImageMode selects how normalized images are addressed in a turn.
type ImageMode string

const (
	// ImageModeInline carries the canonical bytes in the part itself.
	ImageModeInline ImageMode = "inline"
	// ImageModeUpload uploads the bytes to the backend file store and
	// references them by URI.
	ImageModeUpload ImageMode = "upload"
)

// Config holds process-level settings for the gateway.
type Config struct {
	Addr            string
	APIKey          string
	// BaseURL overrides the backend API endpoint, e.g. for a proxy.
	BaseURL         string
	LogLevel        string
	ShutdownTimeout time.Duration

	SessionTTL    time.Duration
	SweepInterval time.Duration

	// MaxRequestBytes bounds the size of an inbound request body.
	MaxRequestBytes int64
	// MaxQuestionLength bounds the question in grapheme clusters. 0 = no limit.
	MaxQuestionLength int

	Image      ImageConfig
	Generation GenerationConfig
}

// ImageConfig configures the multimodal normalizer.
type ImageConfig struct {
	Mode         ImageMode
	MaxDimension int
	Quality      int
	AllowedTypes []string
}

// GenerationConfig carries backend generation parameters. Nil pointers and
// zero values leave the backend default in place.
type GenerationConfig struct {
	Model            string
	SystemPrompt     string
	Temperature      *float64
	TopP             *float64
	TopK             *float64
	MaxOutputTokens  int
	ResponseMIMEType string
}

// Defaults.
const (
	DefaultAddr              = ":5000"
	DefaultModel             = "gemini-1.5-flash"
	DefaultSessionTTL        = 30 * time.Minute
	DefaultSweepInterval     = time.Minute
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultMaxRequestBytes   = 20 << 20
	DefaultMaxQuestionLength = 32 * 1024
	DefaultMaxDimension      = 2048
	DefaultJPEGQuality       = 85
)

// DefaultConfig returns the configuration used when nothing is overridden.
// Generation defaults match the gateway's historical model settings.
func DefaultConfig() Config {
	return Config{
		Addr:              DefaultAddr,
		LogLevel:          "info",
		ShutdownTimeout:   DefaultShutdownTimeout,
		SessionTTL:        DefaultSessionTTL,
		SweepInterval:     DefaultSweepInterval,
		MaxRequestBytes:   DefaultMaxRequestBytes,
		MaxQuestionLength: DefaultMaxQuestionLength,
		Image: ImageConfig{
			Mode:         ImageModeInline,
			MaxDimension: DefaultMaxDimension,
			Quality:      DefaultJPEGQuality,
			AllowedTypes: []string{"image/*"},
		},
		Generation: GenerationConfig{
			Model:            DefaultModel,
			Temperature:      ptr(1.0),
			TopP:             ptr(0.95),
			TopK:             ptr(64.0),
			MaxOutputTokens:  8192,
			ResponseMIMEType: "text/plain",
		},
	}
}

// Validate checks that the configuration can start a server. A missing API
// key is fatal.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("backend API key is not set: %w", ErrConfiguration)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s: %w", c.SessionTTL, ErrConfiguration)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s: %w", c.SweepInterval, ErrConfiguration)
	}
	switch c.Image.Mode {
	case ImageModeInline, ImageModeUpload:
	default:
		return fmt.Errorf("unknown image mode %q: %w", c.Image.Mode, ErrConfiguration)
	}
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return fmt.Errorf("jpeg quality must be in [1, 100], got %d: %w", c.Image.Quality, ErrConfiguration)
	}
	if c.Image.MaxDimension < 0 {
		return fmt.Errorf("max image dimension must be non-negative, got %d: %w", c.Image.MaxDimension, ErrConfiguration)
	}
	if t := c.Generation.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *t, ErrConfiguration)
	}
	if c.Generation.MaxOutputTokens < 0 {
		return fmt.Errorf("max output tokens must be non-negative, got %d: %w", c.Generation.MaxOutputTokens, ErrConfiguration)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
