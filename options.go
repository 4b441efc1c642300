package searchinto

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	keyPrefix       string
	pageSize        int
	workers         int
	scriptTimeout   time.Duration
	defaultLanguage string

	logger *zap.Logger
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix sets the key prefix documents are stored under. Defaults to "searchinto:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithPageSize sets how many source documents are read per page.
func WithPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pageSize = n
	})
}

// WithWorkers bounds how many documents of a page are assembled concurrently.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithScriptTimeout bounds a single script evaluation. Zero disables the bound.
func WithScriptTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.scriptTimeout = d
	})
}

// WithDefaultLanguage sets the language of scripts that do not name one.
func WithDefaultLanguage(lang string) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultLanguage = lang
	})
}

// WithLogger sets the logger for export runs.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
