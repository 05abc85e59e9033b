// Package config loads the optional catdiagram configuration file.
//
// The file is TOML with one table per concern:
//
//	[layout]
//	mode = "linear"
//	vertical = true
//
//	[check]
//	max_expansions = 200000
//	timeout = "30s"
//
//	[render]
//	formats = ["xypic", "svg"]
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[library]
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//
// Every key is optional. Command-line flags override the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/catdiagram/pkg/cache"
	"github.com/matzehuels/catdiagram/pkg/library"
	"github.com/matzehuels/catdiagram/pkg/pipeline"
)

const (
	// appName is the directory name under the user config directory.
	appName = "catdiagram"

	// fileName is the name of the default configuration file.
	fileName = "config.toml"

	// DefaultAddr is the default listen address of the HTTP API.
	DefaultAddr = ":8080"

	// DefaultRequestTimeout bounds one HTTP API request.
	DefaultRequestTimeout = time.Minute
)

// ErrInvalid is returned for a configuration that fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the decoded configuration file.
type Config struct {
	Layout  Layout  `toml:"layout"`
	Check   Check   `toml:"check"`
	Render  Render  `toml:"render"`
	Cache   Cache   `toml:"cache"`
	Library Library `toml:"library"`
	Server  Server  `toml:"server"`
}

// Layout holds layout defaults.
type Layout struct {
	Mode      string `toml:"mode"`
	Vertical  bool   `toml:"vertical"`
	Transpose bool   `toml:"transpose"`
}

// Check holds commutativity search defaults.
type Check struct {
	MaxExpansions int64         `toml:"max_expansions"`
	Timeout       time.Duration `toml:"timeout"`
	MaxCandidates int           `toml:"max_candidates"`
	Paths         int           `toml:"paths"`
	Workers       int           `toml:"workers"`
}

// Render holds renderer defaults.
type Render struct {
	Formats    []string `toml:"formats"`
	Spacing    float64  `toml:"spacing"`
	Scale      float64  `toml:"scale"`
	Identities bool     `toml:"identities"`
	Composites bool     `toml:"composites"`
}

// Cache selects the result cache backend.
type Cache struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
	TTL      time.Duration `toml:"ttl"`
}

// Library selects the axiom library backend.
type Library struct {
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string        `toml:"addr"`
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Server: Server{Addr: DefaultAddr, RequestTimeout: DefaultRequestTimeout},
	}
}

// DefaultPath returns the default configuration file location
// ($XDG_CONFIG_HOME/catdiagram/config.toml).
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, fileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, fileName), nil
}

// Load reads the configuration file at path. An empty path means
// DefaultPath, which may be absent; an explicit path must exist.
// Unknown keys are rejected so misspelt settings do not go unnoticed.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: %s: unknown key %q", ErrInvalid, path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every table against the pipeline's own validation.
func (c *Config) Validate() error {
	opts := c.Options()
	if err := opts.ValidateForLayout(); err != nil {
		return fmt.Errorf("%w: [layout]: %v", ErrInvalid, err)
	}
	if err := opts.ValidateForCheck(); err != nil {
		return fmt.Errorf("%w: [check]: %v", ErrInvalid, err)
	}
	if len(c.Render.Formats) > 0 {
		if err := opts.ValidateForRender(); err != nil {
			return fmt.Errorf("%w: [render]: %v", ErrInvalid, err)
		}
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendNone:
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("%w: [cache]: redis backend needs redis_url", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: [cache]: unknown backend %q", ErrInvalid, c.Cache.Backend)
	}
	if c.Cache.TTL < 0 || c.Server.RequestTimeout < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalid)
	}
	return nil
}

// Options returns pipeline options seeded from the file. Unset keys stay
// zero so the pipeline defaults apply.
func (c *Config) Options() pipeline.Options {
	return pipeline.Options{
		Mode:          c.Layout.Mode,
		Vertical:      c.Layout.Vertical,
		Transpose:     c.Layout.Transpose,
		MaxExpansions: c.Check.MaxExpansions,
		Timeout:       c.Check.Timeout,
		MaxCandidates: c.Check.MaxCandidates,
		Paths:         c.Check.Paths,
		Workers:       c.Check.Workers,
		Formats:       append([]string(nil), c.Render.Formats...),
		Spacing:       c.Render.Spacing,
		Scale:         c.Render.Scale,
		Identities:    c.Render.Identities,
		Composites:    c.Render.Composites,
	}
}

// CacheConfig returns the cache backend selection.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Backend:  c.Cache.Backend,
		Dir:      c.Cache.Dir,
		RedisURL: c.Cache.RedisURL,
	}
}

// LibraryConfig returns the library backend selection.
func (c *Config) LibraryConfig() library.Config {
	return library.Config{
		Dir:      c.Library.Dir,
		MongoURI: c.Library.MongoURI,
		Database: c.Library.Database,
	}
}
