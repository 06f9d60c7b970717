package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"podmatch/internal/apiclient"
	"podmatch/internal/config"
	"podmatch/internal/kvstore"
	"podmatch/internal/logging"
	"podmatch/internal/marketplace"
	"podmatch/internal/session"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// withSession opens the session store for the duration of fn.
func (c *commandContext) withSession(fn func(*config.Config, *session.Session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := kvstore.Open(cfg.Session.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, session.New(store, session.WithLockPath(cfg.SessionLockPath())))
}

// withService builds the authenticated client and marketplace service on top
// of the session store.
func (c *commandContext) withService(fn func(*marketplace.Service) error) error {
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	return c.withSession(func(cfg *config.Config, sess *session.Session) error {
		client, err := apiclient.New(cfg.API.BaseURL, sess,
			apiclient.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
			apiclient.WithLogger(logger),
			apiclient.WithUserAgent(cfg.API.UserAgent),
		)
		if err != nil {
			return err
		}
		return fn(marketplace.New(client, sess, logger))
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

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
