// Package remoteconfig serves feature flags and numeric settings from memory,
// refreshed in the background from the remote_config table.
package remoteconfig

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"contentcheckout/internal/checkout"
	"contentcheckout/internal/config"
	"contentcheckout/internal/domain"
)

type settingStore interface {
	List(ctx context.Context) ([]domain.Setting, error)
}

// Client implements checkout.RemoteConfig. Stored values override the defaults
// it was built with.
type Client struct {
	store  settingStore
	logger logrus.FieldLogger

	defaultFlags map[string]bool
	defaultInts  map[string]int64

	mu    sync.RWMutex
	flags map[string]bool
	ints  map[string]int64

	loaded atomic.Bool
}

var _ checkout.RemoteConfig = (*Client)(nil)

func New(store settingStore, defaults config.RemoteDefaults, logger logrus.FieldLogger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := &Client{
		store:  store,
		logger: logger.WithField("component", "remoteconfig"),
		defaultFlags: map[string]bool{
			checkout.FlagAlternateProcessorEnabled: defaults.AlternateProcessorEnabled,
			checkout.FlagIOSCardPurchaseEnabled:    defaults.IOSCardPurchaseEnabled,
			checkout.FlagExistingBalanceDisabled:   defaults.ExistingBalanceDisabled,
		},
		defaultInts: map[string]int64{
			checkout.IntAlternateProcessorMaxCents: defaults.AlternateProcessorMaxCents,
			checkout.IntMinTopUpCents:              defaults.MinTopUpCents,
			checkout.IntPayExtraLowCents:           defaults.PayExtraPresetsCents[0],
			checkout.IntPayExtraMediumCents:        defaults.PayExtraPresetsCents[1],
			checkout.IntPayExtraHighCents:          defaults.PayExtraPresetsCents[2],
			checkout.IntMaxExtraAmountCents:        defaults.MaxExtraAmountCents,
		},
	}
	c.flags = c.defaultFlags
	c.ints = c.defaultInts
	return c
}

func (c *Client) GetFlag(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flags[name]
}

func (c *Client) GetInt(name string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ints[name]
}

// Loaded reports whether stored values have been read at least once.
func (c *Client) Loaded() bool {
	return c.loaded.Load()
}

// Refresh reloads the stored values. On error the previous values are kept.
func (c *Client) Refresh(ctx context.Context) error {
	if c.store == nil {
		c.loaded.Store(true)
		return nil
	}
	stored, err := c.store.List(ctx)
	if err != nil {
		return err
	}

	flags := make(map[string]bool, len(c.defaultFlags))
	for k, v := range c.defaultFlags {
		flags[k] = v
	}
	ints := make(map[string]int64, len(c.defaultInts))
	for k, v := range c.defaultInts {
		ints[k] = v
	}
	for _, s := range stored {
		if s.BoolValue != nil {
			flags[s.Name] = *s.BoolValue
		}
		if s.IntValue != nil {
			ints[s.Name] = *s.IntValue
		}
	}

	c.mu.Lock()
	c.flags = flags
	c.ints = ints
	c.mu.Unlock()
	c.loaded.Store(true)
	c.logger.WithField("overrides", len(stored)).Debug("remote config refreshed")
	return nil
}

// Run refreshes every interval until ctx is cancelled.
func (c *Client) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
				c.logger.WithError(err).Warn("remote config refresh failed")
			}
		}
	}
}
