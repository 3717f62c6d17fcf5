package modem

import (
	"log/slog"
	"time"
)

type Config struct {
	dialer         Dialer
	logger         *slog.Logger
	commandTimeout time.Duration
	initTimeout    time.Duration
	maxRetries     int
	retryInterval  time.Duration
}

func (c *Config) validate() error {
	if c.dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.commandTimeout == 0 {
		c.commandTimeout = 5 * time.Second
	}
	if c.initTimeout == 0 {
		c.initTimeout = 10 * time.Second
	}
	if c.maxRetries == 0 {
		c.maxRetries = 3
	}
	if c.retryInterval == 0 {
		c.retryInterval = 2 * time.Second
	}
}

// ConfigBuilder assembles a Config. Unset values fall back to defaults when
// Build is called.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.dialer = d
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.logger = l
	return b
}

// WithCommandTimeout bounds the wait for a single response line. A shorter
// deadline on the caller's context still applies.
func (b *ConfigBuilder) WithCommandTimeout(d time.Duration) *ConfigBuilder {
	b.config.commandTimeout = d
	return b
}

func (b *ConfigBuilder) WithInitTimeout(d time.Duration) *ConfigBuilder {
	b.config.initTimeout = d
	return b
}

// WithMaxRetries sets how often a refused sleep request is repeated. Zero
// selects the default of 3; a negative value disables retries.
func (b *ConfigBuilder) WithMaxRetries(n int) *ConfigBuilder {
	b.config.maxRetries = n
	return b
}

func (b *ConfigBuilder) WithRetryInterval(d time.Duration) *ConfigBuilder {
	b.config.retryInterval = d
	return b
}

func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
