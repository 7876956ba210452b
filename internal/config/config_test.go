package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playgraph/playgraph/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playgraph.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := writeConfig(t, `
listen = ":9090"

[cache]
backend = "redis"
redis_addr = "localhost:6379"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("Listen = %q, want :9090", cfg.Listen)
	}
	if cfg.Cache.Backend != BackendRedis {
		t.Errorf("Backend = %q, want redis", cfg.Cache.Backend)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.Cache.RedisAddr)
	}
	// Unset keys keep their defaults
	if cfg.Cache.TTLMinutes != 15 {
		t.Errorf("TTLMinutes = %d, want 15", cfg.Cache.TTLMinutes)
	}
	if cfg.Diagram.Layout != "LR" {
		t.Errorf("Layout = %q, want LR", cfg.Diagram.Layout)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	path := writeConfig(t, "listen = [broken\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidFormat {
		t.Errorf("code = %v, want %v", got, errors.ErrCodeInvalidFormat)
	}
}

func TestLoadInvalidBackend(t *testing.T) {
	path := writeConfig(t, "[cache]\nbackend = \"memcached\"\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidInput {
		t.Errorf("code = %v, want %v", got, errors.ErrCodeInvalidInput)
	}
}

func TestLoadRedisRequiresAddr(t *testing.T) {
	path := writeConfig(t, "[cache]\nbackend = \"redis\"\n")
	if _, err := Load(path); err == nil {
		t.Fatal("redis backend without redis_addr should fail")
	}
}

func TestCacheTTL(t *testing.T) {
	c := CacheConfig{TTLMinutes: 30}
	if got := c.TTL(); got != 30*time.Minute {
		t.Errorf("TTL = %v, want 30m", got)
	}
}
