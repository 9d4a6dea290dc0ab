package httputil

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/crossplot/pkg/cache"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return NewCache(backend, nil, time.Hour)
}

func TestCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	if err := c.Set(ctx, "meta", map[string]string{"name": "imdb"}); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	var got map[string]string
	ok, err := c.Get(ctx, "meta", &got)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want true, nil", ok, err)
	}
	if got["name"] != "imdb" {
		t.Errorf("got %v", got)
	}
}

func TestCache_Miss(t *testing.T) {
	c := newTestCache(t)
	var result string
	ok, err := c.Get(context.Background(), "missing", &result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("Get() returned true for missing key")
	}
}

func TestCache_UndecodableIsMiss(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)
	if err := c.SetBytes(ctx, "raw", []byte("a,b\n1,2\n")); err != nil {
		t.Fatal(err)
	}
	var v map[string]any
	if ok, err := c.Get(ctx, "raw", &v); ok || err != nil {
		t.Errorf("Get() = %v, %v; want false, nil", ok, err)
	}
}

func TestCache_Namespace(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	a := c.Namespace("a")
	b := c.Namespace("b")
	if err := a.SetBytes(ctx, "k", []byte("A")); err != nil {
		t.Fatal(err)
	}
	if err := b.SetBytes(ctx, "k", []byte("B")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		c    *Cache
		want string
		hit  bool
	}{
		{"a", a, "A", true},
		{"b", b, "B", true},
		{"root", c, "", false},
		{"chained", c.Namespace("a").Namespace(""), "A", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ok, err := tt.c.GetBytes(ctx, "k")
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.hit || string(data) != tt.want {
				t.Errorf("GetBytes = %q, %v; want %q, %v", data, ok, tt.want, tt.hit)
			}
		})
	}

	if a.TTL() != c.TTL() {
		t.Errorf("Namespace should keep TTL, got %v", a.TTL())
	}
}

func TestNewCache_NilBackend(t *testing.T) {
	ctx := context.Background()
	c := NewCache(nil, nil, 0)
	if err := c.SetBytes(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.GetBytes(ctx, "k"); ok {
		t.Error("nil backend should never hit")
	}
}
