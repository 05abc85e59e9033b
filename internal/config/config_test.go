package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/catdiagram/pkg/cache"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[layout]
mode = "linear"
vertical = true

[check]
max_expansions = 5000
timeout = "30s"
paths = 3

[render]
formats = ["xypic", "svg"]
scale = 3.0

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
ttl = "24h"

[library]
mongo_uri = "mongodb://localhost:27017"
database = "cats"

[server]
addr = ":9090"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	opts := cfg.Options()
	if opts.Mode != "linear" || !opts.Vertical {
		t.Errorf("layout options = %+v", opts)
	}
	if opts.MaxExpansions != 5000 || opts.Timeout != 30*time.Second || opts.Paths != 3 {
		t.Errorf("check options = %+v", opts)
	}
	if len(opts.Formats) != 2 || opts.Scale != 3 {
		t.Errorf("render options = %+v", opts)
	}
	if cc := cfg.CacheConfig(); cc.Backend != cache.BackendRedis || cc.RedisURL == "" {
		t.Errorf("CacheConfig() = %+v", cc)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
	}
	if lc := cfg.LibraryConfig(); lc.MongoURI == "" || lc.Database != "cats" {
		t.Errorf("LibraryConfig() = %+v", lc)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Server.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("Server.RequestTimeout = %v, want default", cfg.Server.RequestTimeout)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "[layout]\nmoed = \"linear\"\n"},
		{"bad mode", "[layout]\nmode = \"spiral\"\n"},
		{"bad paths", "[check]\npaths = 1\n"},
		{"bad format", "[render]\nformats = [\"gif\"]\n"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Load() error = %v, want %v", err, ErrInvalid)
			}
		})
	}

	if _, err := Load(writeConfig(t, "[layout\n")); err == nil {
		t.Error("Load() should fail on malformed TOML")
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() of a missing explicit path should fail")
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("default Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "catdiagram", "config.toml"); path != want {
		t.Errorf("DefaultPath() = %s, want %s", path, want)
	}
}
