//nolint:testpackage // Tests require internal access for thorough testing
package storage

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/abatilo/taskmaster/internal/task"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisKVGetSet(t *testing.T) {
	mr, client := newMiniRedis(t)
	kv := NewRedisKV(client, "tm:")
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, DefaultKey); ok || err != nil {
		t.Fatalf("Get on empty redis = %v, %v; want absent", ok, err)
	}
	if err := kv.Set(ctx, DefaultKey, `[]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := mr.Get("tm:" + DefaultKey)
	if err != nil || got != "[]" {
		t.Errorf("redis value = %q, %v; want []", got, err)
	}
	if ttl := mr.TTL("tm:" + DefaultKey); ttl != 0 {
		t.Errorf("value has TTL %v, want none", ttl)
	}
}

func TestStoreOverRedis(t *testing.T) {
	_, client := newMiniRedis(t)
	kv := NewRedisKV(client, "")
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	store := Open(ctx, kv, WithLogger(logger))
	created, err := store.Create(task.Input{Title: "Pay rent", Category: task.CategoryFinance})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reopened := Open(ctx, kv, WithLogger(logger))
	got, ok := reopened.Get(created.ID)
	if !ok || got.Category != task.CategoryFinance {
		t.Errorf("reopened store Get = %+v, %v", got, ok)
	}
}

func TestRedisKVUnreachable(t *testing.T) {
	mr, client := newMiniRedis(t)
	mr.Close()

	logger, hook := test.NewNullLogger()
	store := Open(context.Background(), NewRedisKV(client, ""), WithLogger(logger))
	if len(store.Tasks()) != 0 {
		t.Error("unreachable backend should yield an empty store")
	}
	if hook.LastEntry() == nil {
		t.Error("expected the load failure to be logged")
	}
}

func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		name     string
		conn     string
		addr     string
		password string
		tls      bool
	}{
		{"url", "redis://:secret@localhost:6380/0", "localhost:6380", "secret", false},
		{"azure style", "cache.example.net:6380,password=pw,ssl=True", "cache.example.net:6380", "pw", true},
		{"bare addr", "localhost:6379", "localhost:6379", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewRedisClient(tt.conn)
			defer client.Close()
			opts := client.Options()
			if opts.Addr != tt.addr || opts.Password != tt.password || (opts.TLSConfig != nil) != tt.tls {
				t.Errorf("options = %s/%s/tls=%v, want %s/%s/tls=%v",
					opts.Addr, opts.Password, opts.TLSConfig != nil, tt.addr, tt.password, tt.tls)
			}
		})
	}
}
