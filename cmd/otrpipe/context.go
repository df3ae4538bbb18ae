package main

import (
	"log/slog"

	"otrpipe/internal/config"
	"otrpipe/internal/history"
	"otrpipe/internal/logging"
	"otrpipe/internal/pipeline"
)

// commandContext lazily loads configuration and shared collaborators for the
// subcommands.
type commandContext struct {
	configFlag *string

	cfg    *config.Config
	logger *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, *slog.Logger, error) {
	if c.cfg != nil {
		return c.cfg, c.logger, nil
	}
	cfg, err := config.Load(*c.configFlag)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	c.cfg = cfg
	c.logger = logger
	return cfg, logger, nil
}

// openHistory opens the run-history store. History being unavailable must not
// block a run, so callers treat a nil store as "no history".
func (c *commandContext) openHistory(cfg *config.Config, logger *slog.Logger) *history.Store {
	store, err := history.Open(cfg.Paths.HistoryPath)
	if err != nil {
		logger.Warn("history disabled", "error", err)
		return nil
	}
	return store
}

func (c *commandContext) newRunner(cfg *config.Config, logger *slog.Logger, store *history.Store) (*pipeline.Runner, error) {
	if store == nil {
		return pipeline.New(cfg, logger, nil)
	}
	return pipeline.New(cfg, logger, store)
}
