package store

import (
	"context"
	"log/slog"

	"github.com/starford/jarvis/internal/models"
)

// Cached pairs a remote provider with a local cache. Writes land locally
// first so a remote outage never loses data; reads prefer the remote copy
// and fall back to the cache.
type Cached struct {
	remote Provider
	local  Provider
	log    *slog.Logger
}

var _ Provider = (*Cached)(nil)

// NewCached creates a Cached provider. remote may be nil for local-only use.
func NewCached(remote, local Provider, log *slog.Logger) *Cached {
	if log == nil {
		log = slog.Default()
	}
	return &Cached{remote: remote, local: local, log: log}
}

// Load implements Provider.
func (c *Cached) Load(ctx context.Context, userKey string) (*models.UserData, error) {
	if c.remote == nil {
		return c.local.Load(ctx, userKey)
	}
	d, err := c.remote.Load(ctx, userKey)
	if err != nil {
		c.log.Warn("store: remote load failed, using local cache",
			slog.String("user", userKey),
			slog.String("error", err.Error()))
		return c.local.Load(ctx, userKey)
	}
	if d == nil {
		return c.local.Load(ctx, userKey)
	}
	if err := c.local.Save(ctx, userKey, d); err != nil {
		c.log.Warn("store: local backup failed",
			slog.String("user", userKey),
			slog.String("error", err.Error()))
	}
	return d, nil
}

// Save implements Provider. The local write always happens; the returned
// error reports the remote write.
func (c *Cached) Save(ctx context.Context, userKey string, data *models.UserData) error {
	if err := c.local.Save(ctx, userKey, data); err != nil {
		c.log.Warn("store: local save failed",
			slog.String("user", userKey),
			slog.String("error", err.Error()))
	}
	if c.remote == nil {
		return nil
	}
	return c.remote.Save(ctx, userKey, data)
}
