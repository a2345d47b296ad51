package ftp

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pior/ftp/command"
)

var ErrInvalidConfig = errors.New("ftp: invalid config")

// Config holds the control server settings.
// Zero values are replaced by the defaults of DefaultConfig.
type Config struct {
	// Addr is the TCP address to listen on.
	Addr string `toml:"addr"`

	// Greeting is the text of the 220 reply sent on connect.
	Greeting string `toml:"greeting"`

	// MaxConnections bounds concurrent sessions. Connections beyond it get 421.
	MaxConnections int32 `toml:"max_connections"`

	// MaxLineSize is the longest command line accepted, CRLF excluded.
	MaxLineSize int `toml:"max_line_size"`

	// IdleTimeout closes sessions that send nothing for this long.
	IdleTimeout time.Duration `toml:"idle_timeout"`

	// AcquireTimeout is how long a new connection waits for a free session.
	AcquireTimeout time.Duration `toml:"acquire_timeout"`

	// MaxDecodeErrors closes a session after this many malformed lines.
	// A negative value means no limit.
	MaxDecodeErrors int `toml:"max_decode_errors"`

	Breaker BreakerConfig `toml:"breaker"`
	Log     LogConfig     `toml:"log"`

	// Logger receives server logs. Nil means slog.Default().
	Logger *slog.Logger `toml:"-"`
}

// BreakerConfig controls the per-peer circuit breakers.
//
// A session counts as a failure for its peer host when it ends because of a
// too long line or too many decode errors. After MaxFailures consecutive
// failures the host is refused for OpenTimeout.
type BreakerConfig struct {
	Disabled bool `toml:"disabled"`

	// MaxFailures is the number of consecutive abusive sessions that trips the breaker.
	MaxFailures uint32 `toml:"max_failures"`

	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration `toml:"open_timeout"`

	// Interval clears failure counts of a closed breaker periodically.
	Interval time.Duration `toml:"interval"`

	// HalfOpenSessions is the number of sessions let through while probing.
	HalfOpenSessions uint32 `toml:"half_open_sessions"`
}

// LogConfig selects the log handler built by the ftpd command.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json

	// File enables rotating file output. Empty means stderr.
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// DefaultConfig returns the configuration used for unset fields.
func DefaultConfig() Config {
	return Config{
		Addr:            ":2121",
		Greeting:        "Service ready for new user.",
		MaxConnections:  64,
		MaxLineSize:     command.MaxLineSize,
		IdleTimeout:     5 * time.Minute,
		AcquireTimeout:  100 * time.Millisecond,
		MaxDecodeErrors: 20,
		Breaker: BreakerConfig{
			MaxFailures:      5,
			OpenTimeout:      time.Minute,
			Interval:         10 * time.Minute,
			HalfOpenSessions: 1,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// LoadConfig reads a TOML config file. Keys absent from the file keep their
// default value; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.Greeting == "" {
		c.Greeting = def.Greeting
	}
	if c.MaxConnections == 0 {
		c.MaxConnections = def.MaxConnections
	}
	if c.MaxLineSize == 0 {
		c.MaxLineSize = def.MaxLineSize
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = def.IdleTimeout
	}
	if c.AcquireTimeout == 0 {
		c.AcquireTimeout = def.AcquireTimeout
	}
	if c.MaxDecodeErrors == 0 {
		c.MaxDecodeErrors = def.MaxDecodeErrors
	}
	if c.Breaker.MaxFailures == 0 {
		c.Breaker.MaxFailures = def.Breaker.MaxFailures
	}
	if c.Breaker.OpenTimeout == 0 {
		c.Breaker.OpenTimeout = def.Breaker.OpenTimeout
	}
	if c.Breaker.Interval == 0 {
		c.Breaker.Interval = def.Breaker.Interval
	}
	if c.Breaker.HalfOpenSessions == 0 {
		c.Breaker.HalfOpenSessions = def.Breaker.HalfOpenSessions
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr is required", ErrInvalidConfig)
	case c.MaxConnections <= 0:
		return fmt.Errorf("%w: max_connections must be > 0, got %d", ErrInvalidConfig, c.MaxConnections)
	case c.MaxLineSize < 64:
		return fmt.Errorf("%w: max_line_size must be >= 64, got %d", ErrInvalidConfig, c.MaxLineSize)
	case c.IdleTimeout < 0:
		return fmt.Errorf("%w: idle_timeout must not be negative", ErrInvalidConfig)
	case c.AcquireTimeout < 0:
		return fmt.Errorf("%w: acquire_timeout must not be negative", ErrInvalidConfig)
	case strings.ContainsAny(c.Greeting, "\r\n"):
		return fmt.Errorf("%w: greeting must be a single line", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
