package backup

import (
	"time"

	"github.com/xxxsen/ghrelease/davclient"
	"github.com/xxxsen/ghrelease/kvstore"
)

type config struct {
	kv         kvstore.IKVStore
	settings   ISettingsStore
	presets    IPresetStore
	remote     davclient.IClient
	maxBackups int
	maxPayload int64
	now        func() time.Time
	idgen      func() uint64
}

type Option func(c *config)

func WithKVStore(kv kvstore.IKVStore) Option {
	return func(c *config) {
		c.kv = kv
	}
}

func WithSettingsStore(s ISettingsStore) Option {
	return func(c *config) {
		c.settings = s
	}
}

func WithPresetStore(s IPresetStore) Option {
	return func(c *config) {
		c.presets = s
	}
}

// WithRemote enables the push/pull operations against a webdav server.
func WithRemote(cli davclient.IClient) Option {
	return func(c *config) {
		c.remote = cli
	}
}

func WithMaxBackups(n int) Option {
	return func(c *config) {
		c.maxBackups = n
	}
}

// WithMaxPayloadSize limits the size of imported or downloaded backup files.
func WithMaxPayloadSize(n int64) Option {
	return func(c *config) {
		c.maxPayload = n
	}
}

func WithClock(fn func() time.Time) Option {
	return func(c *config) {
		c.now = fn
	}
}

func WithIDGen(fn func() uint64) Option {
	return func(c *config) {
		c.idgen = fn
	}
}
