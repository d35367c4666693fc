package config

import (
	"sync"
	"time"
)

type Config interface {
	HTTPPort() string

	BufferSize() int
	ReadTimeout() time.Duration
	MaxBodySize() int64

	AcceptRate() float64
	AcceptBurst() int

	CrossOrigin() CrossOrigin

	LogLevel() string
	LogFormat() string

	MetricsEnabled() bool
	MetricsPort() string

	PprofEnabled() bool
	PprofPort() string
}

// CrossOrigin holds the values written into every response as
// Access-Control-* headers.
type CrossOrigin struct {
	Origin      string `yaml:"origin"`
	Methods     string `yaml:"methods"`
	MaxAge      string `yaml:"max_age"`
	Headers     string `yaml:"headers"`
	Credentials string `yaml:"credentials"`
}

var (
	defaultMu  sync.RWMutex
	defaultCfg Config
)

// SetDefault installs the process-wide configuration.
func SetDefault(cfg Config) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultCfg = cfg
}

// Default returns the process-wide configuration, or nil if none was installed.
func Default() Config {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultCfg
}

func MustLoad() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg, err := parse()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *config) HTTPPort() string           { return c.httpPort }
func (c *config) BufferSize() int            { return c.bufferSize }
func (c *config) ReadTimeout() time.Duration { return c.readTimeout }
func (c *config) MaxBodySize() int64         { return c.maxBodySize }
func (c *config) AcceptRate() float64        { return c.acceptRate }
func (c *config) AcceptBurst() int           { return c.acceptBurst }
func (c *config) CrossOrigin() CrossOrigin   { return c.crossOrigin }
func (c *config) LogLevel() string           { return c.logLevel }
func (c *config) LogFormat() string          { return c.logFormat }
func (c *config) MetricsEnabled() bool       { return c.metricsEnabled }
func (c *config) MetricsPort() string        { return c.metricsPort }
func (c *config) PprofEnabled() bool         { return c.pprofEnabled }
func (c *config) PprofPort() string          { return c.pprofPort }
