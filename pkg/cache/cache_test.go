package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	if h3 := Hash([]byte("world")); h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashKey(t *testing.T) {
	key := hashKey("result", "v1", "abc", ResultKeyOpts{Extractor: "dijkstra"})
	prefix, digest, ok := strings.Cut(key, ":")
	if !ok || prefix != "result" || len(digest) != 64 {
		t.Errorf("hashKey() = %q, want result:<64 hex chars>", key)
	}
	if key == hashKey("result", "v1", "abc", ResultKeyOpts{Extractor: "other"}) {
		t.Error("different extractors should produce different keys")
	}
	// The SHA-256 of the empty input is a published constant.
	if got := Hash(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Hash(nil) = %s", got)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`{"a":1}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get(k) = hit %v, err %v", hit, err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("Get(k) = %s", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl entry should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v; want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir not empty after Clear: %d entries", len(entries))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	g := Hash([]byte(`{"nodes":{}}`))

	a := k.ResultKey(g, ResultKeyOpts{Extractor: "dijkstra"})
	if !strings.HasPrefix(a, "result:") {
		t.Errorf("ResultKey() = %q, want result: prefix", a)
	}
	if a != k.ResultKey(g, ResultKeyOpts{Extractor: "dijkstra"}) {
		t.Error("ResultKey should be deterministic")
	}

	tests := []struct {
		name  string
		graph string
		opts  ResultKeyOpts
	}{
		{"other extractor", g, ResultKeyOpts{Extractor: "greedy"}},
		{"other graph", Hash([]byte(`{}`)), ResultKeyOpts{Extractor: "dijkstra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if k.ResultKey(tt.graph, tt.opts) == a {
				t.Error("keys should differ")
			}
		})
	}
}

func TestScopedKeyer(t *testing.T) {
	opts := ResultKeyOpts{Extractor: "dijkstra"}
	base := NewDefaultKeyer().ResultKey("h", opts)

	scoped := NewScopedKeyer(nil, "eclass:")
	if got := scoped.ResultKey("h", opts); got != "eclass:"+base {
		t.Errorf("ResultKey() = %q, want %q", got, "eclass:"+base)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = old })

	t.Run("succeeds after retries", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			if calls < 3 {
				return Retryable(errors.New("flaky"))
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v, calls = %d; want nil, 3", err, calls)
		}
	})

	t.Run("non-retryable stops", func(t *testing.T) {
		calls := 0
		want := errors.New("fatal")
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			return want
		})
		if !errors.Is(err, want) || calls != 1 {
			t.Errorf("err = %v, calls = %d; want fatal, 1", err, calls)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			return Retryable(ErrNetwork)
		})
		if !errors.Is(err, ErrNetwork) || calls != 3 {
			t.Errorf("err = %v, calls = %d; want ErrNetwork, 3", err, calls)
		}
	})

	t.Run("context canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	if IsRetryable(errors.New("x")) {
		t.Error("plain error should not be retryable")
	}
	if !IsRetryable(Retryable(errors.New("x"))) {
		t.Error("wrapped error should be retryable")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache("http://localhost:6379"); err == nil {
		t.Error("NewRedisCache() with non-redis scheme should fail")
	}
	c, err := NewRedisCache("redis://localhost:6379/0")
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	c.Close()
}

func TestClassifyRedisErr(t *testing.T) {
	if classifyRedisErr(nil) != nil {
		t.Error("nil should stay nil")
	}
	plain := errors.New("WRONGTYPE")
	if got := classifyRedisErr(plain); got != plain || IsRetryable(got) {
		t.Errorf("classifyRedisErr(plain) = %v", got)
	}
	netErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	got := classifyRedisErr(netErr)
	if !IsRetryable(got) || !errors.Is(got, ErrNetwork) {
		t.Errorf("classifyRedisErr(net) = %v, want retryable ErrNetwork", got)
	}
}
