package cli

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/catdiagram/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	dir, err := cacheDir(cache.Config{Dir: "/tmp/custom-cache"})
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != "/tmp/custom-cache" {
		t.Errorf("cacheDir() = %q, want %q", dir, "/tmp/custom-cache")
	}
}

func TestCacheDirDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	want, err := cache.DefaultDir()
	if err != nil {
		t.Skipf("no user cache dir: %v", err)
	}
	for _, backend := range []string{"", cache.BackendFile} {
		dir, err := cacheDir(cache.Config{Backend: backend})
		if err != nil {
			t.Fatalf("cacheDir(%q) error: %v", backend, err)
		}
		if dir != want {
			t.Errorf("cacheDir(%q) = %q, want %q", backend, dir, want)
		}
		if filepath.Base(dir) != appName {
			t.Errorf("cacheDir(%q) = %q, should end with %q", backend, dir, appName)
		}
	}
}

func TestCacheDirNoDirectory(t *testing.T) {
	for _, backend := range []string{cache.BackendRedis, cache.BackendNone} {
		if _, err := cacheDir(cache.Config{Backend: backend, Dir: "/tmp/x"}); err == nil {
			t.Errorf("cacheDir(%q) should fail", backend)
		}
	}
}
