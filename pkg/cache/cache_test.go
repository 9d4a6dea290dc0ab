package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/crossplot/pkg/errors"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("marsilea", "imdb.csv"); got != "http:marsilea:imdb.csv" {
		t.Errorf("HTTPKey = %q", got)
	}
	if got := k.DatasetKey("pbmc3k", "exp"); got != "dataset:pbmc3k/exp" {
		t.Errorf("DatasetKey = %q", got)
	}

	a := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "png", DPI: 150})
	b := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "png", DPI: 300})
	c := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg", DPI: 150})
	if a == b || a == c {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if a != k.ArtifactKey("abc", ArtifactKeyOpts{Format: "png", DPI: 150}) {
		t.Error("ArtifactKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "staging:")

	if got := scoped.HTTPKey("marsilea", "x"); got != "staging:http:marsilea:x" {
		t.Errorf("HTTPKey = %q", got)
	}
	if got := scoped.DatasetKey("imdb", "imdb"); got != "staging:dataset:imdb/imdb" {
		t.Errorf("DatasetKey = %q", got)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.HTTPKey("n", "k"); got != "p:http:n:k" {
		t.Errorf("nil inner HTTPKey = %q", got)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get(k) = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of a missing key should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "old", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry should be a clean miss, got %v, %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr errors.Code
	}{
		{"none", "none", "null", ""},
		{"file url", "file://" + dir, "file", ""},
		{"redis url", "redis://localhost:6379/2", "redis", ""},
		{"file without path", "file://", "", errors.ErrCodeInvalidOption},
		{"unknown scheme", "memcached://localhost", "", errors.ErrCodeInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.url)
			if tt.wantErr != "" {
				if errors.GetCode(err) != tt.wantErr {
					t.Fatalf("Open(%q) error = %v, want code %s", tt.url, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open(%q): %v", tt.url, err)
			}
			defer c.Close()

			var got string
			switch c.(type) {
			case *NullCache:
				got = "null"
			case *FileCache:
				got = "file"
			case *RedisCache:
				got = "redis"
			}
			if got != tt.want {
				t.Errorf("Open(%q) = %T, want %s", tt.url, c, tt.want)
			}
		})
	}
}

func TestBackendError(t *testing.T) {
	if backendError("redis", "get", nil) != nil {
		t.Error("nil error should stay nil")
	}
	if code := errors.GetCode(backendError("redis", "get", os.ErrClosed)); code != errors.ErrCodeNetwork {
		t.Errorf("redis failure code = %s, want %s", code, errors.ErrCodeNetwork)
	}
	if code := errors.GetCode(backendError("file", "read", context.DeadlineExceeded)); code != errors.ErrCodeTimeout {
		t.Errorf("deadline code = %s, want %s", code, errors.ErrCodeTimeout)
	}
}
