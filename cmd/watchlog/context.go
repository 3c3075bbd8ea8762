package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"watchlog/internal/catalogcache"
	"watchlog/internal/config"
	"watchlog/internal/logging"
	"watchlog/internal/sqlstore"
	"watchlog/internal/tvmaze"
	"watchlog/internal/watchlog"
)

type commandContext struct {
	configFlag   *string
	jsonFlag     *bool
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string, jsonFlag *bool, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		jsonFlag:     jsonFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = fmt.Errorf("--log-level: %w", err)
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// JSONMode reports whether --json was passed.
func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// session holds everything one command invocation opens.
type session struct {
	logger    *slog.Logger
	logCloser io.Closer
	store     *sqlstore.Store
	cache     *catalogcache.Cache
	manager   *watchlog.Manager
}

func (s *session) Close() {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("catalog cache close failed", logging.Error(err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("database close failed", logging.Error(err))
		}
	}
	logging.CloseQuietly(s.logCloser)
}

func openSession(ctx context.Context, cfg *config.Config, console io.Writer) (*session, error) {
	logger, closer, err := logging.NewFromConfig(cfg, console, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	s := &session{logger: logger, logCloser: closer}

	store, err := sqlstore.Open(cfg.DatabasePath())
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	s.store = store

	cache, err := catalogcache.Open(cfg.Catalog.CachePath, cfg.CatalogCacheTTL())
	if err != nil {
		logging.WarnWithContext(logger, "catalog cache unavailable", "catalog_cache_open",
			logging.Error(err),
			logging.String(logging.FieldImpact, "series are fetched from TVMaze on every lookup"),
			logging.String(logging.FieldErrorHint, "check catalog.cache_path or set catalog.cache_enabled = false"),
		)
	} else {
		s.cache = cache
	}

	opts := []tvmaze.Option{
		tvmaze.WithTimeout(cfg.CatalogTimeout()),
		tvmaze.WithMaxRedirects(cfg.Catalog.MaxRedirects),
		tvmaze.WithLogger(logging.NewComponentLogger(logger, "tvmaze")),
	}
	if s.cache.Enabled() {
		opts = append(opts, tvmaze.WithCache(s.cache))
	}
	client, err := tvmaze.New(cfg.Catalog.BaseURL, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.manager = watchlog.New(store, client, watchlog.WithLogger(logger))
	if err := s.manager.EnsureSchema(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare database: %w", err)
	}
	return s, nil
}

// withSession opens a session for the duration of fn.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(*session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// withManager is withSession for commands that only need the Manager.
func (c *commandContext) withManager(cmd *cobra.Command, fn func(context.Context, *watchlog.Manager) error) error {
	return c.withSession(cmd, func(s *session) error {
		return fn(cmd.Context(), s.manager)
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
