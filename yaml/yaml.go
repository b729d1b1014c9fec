// Package yaml loads a [chatgate.Config] from a YAML file using
// gopkg.in/yaml.v3. Values present in the file override
// [chatgate.DefaultConfig]; absent keys keep their defaults.
//
// ${VAR} references are expanded before parsing using the lookup function
// supplied by the caller, so secrets such as the API key can stay in the
// environment.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/fwojciec/chatgate"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors chatgate.Config. Pointers distinguish "absent" from
// zero values.
type fileConfig struct {
	Addr            *string `yaml:"addr"`
	APIKey          *string `yaml:"api_key"`
	LogLevel        *string `yaml:"log_level"`
	ShutdownTimeout *string `yaml:"shutdown_timeout"`

	Session struct {
		TTL           *string `yaml:"ttl"`
		SweepInterval *string `yaml:"sweep_interval"`
	} `yaml:"session"`

	Limits struct {
		MaxRequestBytes   *int64 `yaml:"max_request_bytes"`
		MaxQuestionLength *int   `yaml:"max_question_length"`
	} `yaml:"limits"`

	Image struct {
		Mode         *string  `yaml:"mode"`
		MaxDimension *int     `yaml:"max_dimension"`
		Quality      *int     `yaml:"quality"`
		AllowedTypes []string `yaml:"allowed_types"`
	} `yaml:"image"`

	Generation struct {
		Model            *string  `yaml:"model"`
		SystemPrompt     *string  `yaml:"system_prompt"`
		Temperature      *float64 `yaml:"temperature"`
		TopP             *float64 `yaml:"top_p"`
		TopK             *float64 `yaml:"top_k"`
		MaxOutputTokens  *int     `yaml:"max_output_tokens"`
		ResponseMIMEType *string  `yaml:"response_mime_type"`
	} `yaml:"generation"`

	Gemini struct {
		BaseURL *string `yaml:"base_url"`
	} `yaml:"gemini"`
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads the file at path and applies it over the defaults. getenv
// resolves ${VAR} references; nil leaves them unexpanded.
func Load(path string, getenv func(string) string) (chatgate.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chatgate.Config{}, fmt.Errorf("read config file: %v: %w", err, chatgate.ErrConfiguration)
	}
	return Parse(data, getenv)
}

// Parse applies YAML data over the defaults. Unknown keys are rejected.
// The result is not validated.
func Parse(data []byte, getenv func(string) string) (chatgate.Config, error) {
	if getenv != nil {
		data = envRef.ReplaceAllFunc(data, func(m []byte) []byte {
			return []byte(getenv(string(m[2 : len(m)-1])))
		})
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return chatgate.Config{}, fmt.Errorf("parse config: %v: %w", err, chatgate.ErrConfiguration)
	}

	cfg := chatgate.DefaultConfig()
	if err := fc.apply(&cfg); err != nil {
		return chatgate.Config{}, err
	}
	return cfg, nil
}

func (fc *fileConfig) apply(cfg *chatgate.Config) error {
	setString(&cfg.Addr, fc.Addr)
	setString(&cfg.APIKey, fc.APIKey)
	setString(&cfg.LogLevel, fc.LogLevel)
	if err := setDuration(&cfg.ShutdownTimeout, fc.ShutdownTimeout, "shutdown_timeout"); err != nil {
		return err
	}

	if err := setDuration(&cfg.SessionTTL, fc.Session.TTL, "session.ttl"); err != nil {
		return err
	}
	if err := setDuration(&cfg.SweepInterval, fc.Session.SweepInterval, "session.sweep_interval"); err != nil {
		return err
	}

	if fc.Limits.MaxRequestBytes != nil {
		cfg.MaxRequestBytes = *fc.Limits.MaxRequestBytes
	}
	if fc.Limits.MaxQuestionLength != nil {
		cfg.MaxQuestionLength = *fc.Limits.MaxQuestionLength
	}

	if fc.Image.Mode != nil {
		cfg.Image.Mode = chatgate.ImageMode(*fc.Image.Mode)
	}
	if fc.Image.MaxDimension != nil {
		cfg.Image.MaxDimension = *fc.Image.MaxDimension
	}
	if fc.Image.Quality != nil {
		cfg.Image.Quality = *fc.Image.Quality
	}
	if fc.Image.AllowedTypes != nil {
		cfg.Image.AllowedTypes = fc.Image.AllowedTypes
	}

	setString(&cfg.BaseURL, fc.Gemini.BaseURL)

	g := &cfg.Generation
	setString(&g.Model, fc.Generation.Model)
	setString(&g.SystemPrompt, fc.Generation.SystemPrompt)
	setString(&g.ResponseMIMEType, fc.Generation.ResponseMIMEType)
	if fc.Generation.Temperature != nil {
		g.Temperature = fc.Generation.Temperature
	}
	if fc.Generation.TopP != nil {
		g.TopP = fc.Generation.TopP
	}
	if fc.Generation.TopK != nil {
		g.TopK = fc.Generation.TopK
	}
	if fc.Generation.MaxOutputTokens != nil {
		g.MaxOutputTokens = *fc.Generation.MaxOutputTokens
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, key string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", key, err, chatgate.ErrConfiguration)
	}
	*dst = d
	return nil
}
