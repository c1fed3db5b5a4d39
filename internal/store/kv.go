// Package store provides the durable string-keyed store that every cache in
// figfiles persists into. Values are opaque strings, usually JSON.
//
// Several backends implement KV: an embedded bbolt file (default), a SQLite
// database, a Redis server shared between machines, and an in-memory map for
// tests and throwaway runs.
package store

import (
	"context"
	"fmt"
	"strings"
)

// KV is a durable key-value store. Each Set is an atomic single-key
// overwrite.
type KV interface {
	// Get returns the value and true, or "" and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes a key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Keys lists every key currently stored.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendBolt   = "bbolt"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Path is the database file for bbolt and sqlite.
	Path string
	// RedisAddr, RedisPassword, RedisDB and KeyPrefix configure the redis backend.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
}

// Open creates the backend described by opts.
func Open(opts Options) (KV, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendBolt:
		return NewBolt(opts.Path)
	case BackendSQLite:
		return NewSQLite(opts.Path)
	case BackendRedis:
		return NewRedis(RedisOptions{
			Addr:      opts.RedisAddr,
			Password:  opts.RedisPassword,
			DB:        opts.RedisDB,
			KeyPrefix: opts.KeyPrefix,
		})
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q", opts.Backend)
	}
}

// KeysWithPrefix returns the keys of kv that start with prefix.
func KeysWithPrefix(ctx context.Context, kv KV, prefix string) ([]string, error) {
	keys, err := kv.Keys(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}
