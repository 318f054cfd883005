package navigator

import (
	"context"
	"net/http"
	"time"

	"photoarchiver/pkg/config"
)

// NewFactory returns the session factory for the configured browser engine
func NewFactory(cfg config.BrowserConfig, pageTimeout time.Duration) Factory {
	if cfg.Engine == config.EngineHTTP {
		return func(ctx context.Context) (Session, error) {
			client := &http.Client{Timeout: pageTimeout}
			return NewStaticSession(client, cfg.UserAgent), nil
		}
	}

	return func(ctx context.Context) (Session, error) {
		return NewRodSession(ctx, RodOptions{
			Headless:  cfg.Headless,
			Stealth:   cfg.Stealth,
			NoSandbox: cfg.NoSandbox,
			Bin:       cfg.Bin,
			UserAgent: cfg.UserAgent,
		})
	}
}

// SelectorFrom converts a configured selector
func SelectorFrom(cfg config.SelectorConfig) Selector {
	if cfg.Class != "" {
		return ByClass(cfg.Class)
	}
	return ByClasses(cfg.Tag, cfg.Classes)
}
