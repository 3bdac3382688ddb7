package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/leofalp/agentswarm/core/recovery"
	"github.com/leofalp/agentswarm/core/suggest"
	"github.com/leofalp/agentswarm/internal/config"
	"github.com/leofalp/agentswarm/internal/diagnostics"
	"github.com/leofalp/agentswarm/prompts"
	"github.com/leofalp/agentswarm/providers/ai/anthropic"
	"github.com/leofalp/agentswarm/providers/observability"
	"github.com/leofalp/agentswarm/providers/observability/promobs"
	"github.com/leofalp/agentswarm/providers/observability/slogobs"
)

// app holds what every command builds from the configuration.
type app struct {
	cfg      *config.Config
	logger   *slogobs.Observer
	metrics  *promobs.Metrics
	observer observability.Provider
	sink     recovery.Sink
	closers  []io.Closer
}

// newApp loads the configuration and builds logging, metrics and the
// diagnostic sinks. Logs go to stderr so command output stays clean.
func newApp(ctx context.Context, opts *globalOpts, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, err
	}

	level := slogobs.GetLogLevelFromEnv()
	format := slogobs.GetFormatFromEnv()
	for _, v := range []string{cfg.Log.Level, opts.logLevel} {
		if v != "" {
			level = slogobs.ParseLogLevel(v)
		}
	}
	for _, v := range []string{cfg.Log.Format, opts.logFormat} {
		if v != "" {
			format = slogobs.ParseFormat(v)
		}
	}

	logger := slogobs.New(
		slogobs.WithLevel(level),
		slogobs.WithFormat(format),
		slogobs.WithOutput(stderr),
		slogobs.WithAttributes(observability.String("service", "agentswarm")),
	)
	metrics := promobs.New(promobs.WithRuntimeCollectors())

	a := &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		observer: observability.Compose(logger, metrics, logger),
	}

	if err := a.openSinks(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openSinks(ctx context.Context) error {
	var sinks []recovery.Sink

	if dir := a.cfg.Diagnostics.Dir; dir != "" {
		fileSink, err := diagnostics.NewFileSink(dir)
		if err != nil {
			return err
		}
		sinks = append(sinks, fileSink)
		a.logger.Info(ctx, "persisting unrecoverable replies to disk", observability.String("dir", dir))
	}

	if url := a.cfg.Diagnostics.RedisURL; url != "" {
		var redisOpts []diagnostics.RedisOption
		if a.cfg.Diagnostics.RedisTTL > 0 {
			redisOpts = append(redisOpts, diagnostics.WithTTL(a.cfg.Diagnostics.RedisTTL))
		}
		redisSink, err := diagnostics.DialRedisSink(ctx, url, redisOpts...)
		if err != nil {
			return err
		}
		sinks = append(sinks, redisSink)
		a.closers = append(a.closers, redisSink)
		a.logger.Info(ctx, "persisting unrecoverable replies to redis")
	}

	a.sink = diagnostics.Combine(sinks...)
	return nil
}

// service builds the suggestion service. Offline commands pass
// requireKey=false.
func (a *app) service(requireKey bool) (*suggest.Service, error) {
	if requireKey {
		if err := a.cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
	}

	prompt, err := prompts.Load(a.cfg.MasterPromptPath, a.cfg.MasterPromptPath == config.DefaultMasterPromptPath)
	if err != nil {
		return nil, err
	}

	provider := anthropic.New().WithTimeout(a.cfg.Anthropic.Timeout)
	provider.WithAPIKey(a.cfg.Anthropic.APIKey)
	provider.WithBaseURL(a.cfg.Anthropic.BaseURL)

	opts := []suggest.Option{
		suggest.WithModel(a.cfg.Anthropic.Model),
		suggest.WithMaxTokens(a.cfg.Anthropic.MaxTokens),
		suggest.WithPrompt(prompt),
		suggest.WithObserver(a.observer),
		suggest.WithRateLimit(a.cfg.RateLimit, 1),
		suggest.WithRequestTimeout(a.cfg.Anthropic.Timeout),
	}
	if n := a.cfg.Anthropic.MaxRetries; n > 0 {
		opts = append(opts, suggest.WithRetry(suggest.RetryConfig{MaxRetries: n}))
	}
	if a.sink != nil {
		opts = append(opts, suggest.WithSink(a.sink))
	}
	return suggest.New(provider, opts...), nil
}

// Close releases the sinks.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
