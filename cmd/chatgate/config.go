package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/chatgate"
	"github.com/fwojciec/chatgate/yaml"
	"github.com/spf13/cobra"
)

// Environment variables read by the command.
const (
	envAPIKey = "GEMINI_API_KEY"
	envAddr   = "CHATGATE_ADDR"
)

// options holds raw flag values. A flag only overrides lower layers when it
// was set on the command line.
type options struct {
	configPath        string
	addr              string
	apiKey            string
	baseURL           string
	model             string
	systemPrompt      string
	sessionTTL        time.Duration
	sweepInterval     time.Duration
	imageMode         string
	maxImageDimension int
	jpegQuality       int
	maxRequestBytes   int64
	maxQuestionLength int
	allowedImageTypes []string
	logLevel          string
	shutdownTimeout   time.Duration
}

func (o *options) register(cmd *cobra.Command) {
	d := chatgate.DefaultConfig()
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "Path to a YAML config file")
	f.StringVar(&o.addr, "addr", d.Addr, "Listen address")
	f.StringVar(&o.apiKey, "api-key", "", "Backend API key (overrides "+envAPIKey+")")
	f.StringVar(&o.baseURL, "base-url", "", "Backend API endpoint override")
	f.StringVar(&o.model, "model", d.Generation.Model, "Backend model ID")
	f.StringVar(&o.systemPrompt, "system-prompt", "", "System instruction sent with every request")
	f.DurationVar(&o.sessionTTL, "session-ttl", d.SessionTTL, "Idle time after which a session expires")
	f.DurationVar(&o.sweepInterval, "sweep-interval", d.SweepInterval, "How often expired sessions are removed")
	f.StringVar(&o.imageMode, "image-mode", string(d.Image.Mode), "How images reach the backend: inline or upload")
	f.IntVar(&o.maxImageDimension, "max-image-dimension", d.Image.MaxDimension, "Longest image side after normalization (0 = keep size)")
	f.IntVar(&o.jpegQuality, "jpeg-quality", d.Image.Quality, "JPEG quality for normalized images")
	f.Int64Var(&o.maxRequestBytes, "max-request-bytes", d.MaxRequestBytes, "Maximum request body size")
	f.IntVar(&o.maxQuestionLength, "max-question-length", d.MaxQuestionLength, "Maximum question length in characters (0 = no limit)")
	f.StringSliceVar(&o.allowedImageTypes, "allowed-image-types", d.Image.AllowedTypes, "Glob patterns of accepted image MIME types")
	f.StringVar(&o.logLevel, "log-level", d.LogLevel, "Log level: debug, info, warn, error")
	f.DurationVar(&o.shutdownTimeout, "shutdown-timeout", d.ShutdownTimeout, "How long to wait for in-flight requests on shutdown")
}

// resolveConfig layers flags over environment over the config file over
// defaults and validates the result. changed reports whether a flag was set
// explicitly. Env vars are passed in through getenv; nothing here reads the
// process environment directly.
func resolveConfig(o options, changed func(string) bool, getenv func(string) string) (chatgate.Config, error) {
	cfg := chatgate.DefaultConfig()
	if o.configPath != "" {
		var err error
		cfg, err = yaml.Load(o.configPath, getenv)
		if err != nil {
			return chatgate.Config{}, fmt.Errorf("%s: %w", o.configPath, err)
		}
	}

	if v := getenv(envAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := getenv(envAddr); v != "" {
		cfg.Addr = v
	}

	if changed("addr") {
		cfg.Addr = o.addr
	}
	if changed("api-key") {
		cfg.APIKey = o.apiKey
	}
	if changed("base-url") {
		cfg.BaseURL = o.baseURL
	}
	if changed("model") {
		cfg.Generation.Model = o.model
	}
	if changed("system-prompt") {
		cfg.Generation.SystemPrompt = o.systemPrompt
	}
	if changed("session-ttl") {
		cfg.SessionTTL = o.sessionTTL
	}
	if changed("sweep-interval") {
		cfg.SweepInterval = o.sweepInterval
	}
	if changed("image-mode") {
		cfg.Image.Mode = chatgate.ImageMode(o.imageMode)
	}
	if changed("max-image-dimension") {
		cfg.Image.MaxDimension = o.maxImageDimension
	}
	if changed("jpeg-quality") {
		cfg.Image.Quality = o.jpegQuality
	}
	if changed("max-request-bytes") {
		cfg.MaxRequestBytes = o.maxRequestBytes
	}
	if changed("max-question-length") {
		cfg.MaxQuestionLength = o.maxQuestionLength
	}
	if changed("allowed-image-types") {
		cfg.Image.AllowedTypes = o.allowedImageTypes
	}
	if changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if changed("shutdown-timeout") {
		cfg.ShutdownTimeout = o.shutdownTimeout
	}

	if err := cfg.Validate(); err != nil {
		return chatgate.Config{}, err
	}
	return cfg, nil
}
