// Command chatgate serves the conversation gateway.
//
// Usage:
//
//	GEMINI_API_KEY=gk-... chatgate [flags]
//
// Settings are resolved from flags, then environment variables
// (GEMINI_API_KEY, CHATGATE_ADDR), then the YAML file named by --config,
// then built-in defaults.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fwojciec/chatgate"
	"github.com/fwojciec/chatgate/gemini"
	"github.com/fwojciec/chatgate/goldmark"
	chathttp "github.com/fwojciec/chatgate/http"
	chatimage "github.com/fwojciec/chatgate/image"
	"github.com/fwojciec/chatgate/memory"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCommand(os.Getenv).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chatgate: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(getenv func(string) string) *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:           "chatgate",
		Short:         "Stateful multimodal chat gateway for a generative backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(o, cmd.Flags().Changed, getenv)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel, isatty.IsTerminal(os.Stderr.Fd()))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	o.register(cmd)
	return cmd
}

// newLogger builds the process logger: human-readable on a terminal, JSON
// lines otherwise.
func newLogger(level string, terminal bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("log level %q: %v: %w", level, err, chatgate.ErrConfiguration)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if terminal {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(lvl).With().Timestamp().Str("service", "chatgate").Logger(), nil
}

// geminiOptions maps the configuration onto backend client options.
func geminiOptions(cfg chatgate.Config) []gemini.Option {
	opts := []gemini.Option{gemini.WithGenerationConfig(cfg.Generation)}
	if cfg.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
	}
	return opts
}

// serve wires the components and runs the HTTP server and the session
// sweeper until ctx is done.
func serve(ctx context.Context, cfg chatgate.Config, logger zerolog.Logger) error {
	store := memory.New(cfg.SessionTTL, memory.WithLogger(logger.With().Str("component", "sessions").Logger()))

	client, err := gemini.New(ctx, cfg.APIKey, geminiOptions(cfg)...)
	if err != nil {
		return err
	}

	imageOpts := []chatimage.Option{
		chatimage.WithMaxDimension(cfg.Image.MaxDimension),
		chatimage.WithQuality(cfg.Image.Quality),
		chatimage.WithAllowedTypes(cfg.Image.AllowedTypes...),
	}
	if cfg.Image.Mode == chatgate.ImageModeUpload {
		imageOpts = append(imageOpts, chatimage.WithUploader(client))
	}
	normalizer := chatimage.New(imageOpts...)

	dispatcher := chatgate.NewDispatcher(store, normalizer, client)
	server := chathttp.New(dispatcher, store,
		chathttp.WithAddr(cfg.Addr),
		chathttp.WithLogger(logger),
		chathttp.WithRenderer(goldmark.New()),
		chathttp.WithMaxRequestBytes(cfg.MaxRequestBytes),
		chathttp.WithMaxQuestionLength(cfg.MaxQuestionLength),
		chathttp.WithShutdownTimeout(cfg.ShutdownTimeout),
	)

	logger.Info().
		Str("model", client.Model()).
		Str("image_mode", string(cfg.Image.Mode)).
		Dur("session_ttl", cfg.SessionTTL).
		Msg("starting")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(ctx) })
	g.Go(func() error { return store.Run(ctx, cfg.SweepInterval) })
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
