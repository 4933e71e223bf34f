package storage

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores values as plain Redis strings without expiry.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV creates a RedisKV. prefix is prepended to every key.
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	return &RedisKV{client: client, prefix: prefix}
}

// Get reads the value stored for key.
func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set replaces the value stored for key.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

// NewRedisClient builds a client from either a redis:// URL or an
// "addr,password=...,ssl=true" connection string.
func NewRedisClient(conn string) *redis.Client {
	opts, err := redis.ParseURL(conn)
	if err != nil {
		parts := strings.Split(conn, ",")
		opts = &redis.Options{Addr: parts[0]}
		for _, p := range parts[1:] {
			kv := strings.SplitN(p, "=", 2)
			if len(kv) != 2 {
				continue
			}
			switch strings.ToLower(kv[0]) {
			case "password":
				opts.Password = kv[1]
			case "ssl":
				if strings.EqualFold(kv[1], "true") {
					opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
				}
			}
		}
	}
	return redis.NewClient(opts)
}
