package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces dataset entries in Redis.
const KeyPrefix = "habitlens:dataset:"

// Redis stores datasets as a name plus CSV so any instance sharing the server can reuse them.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *slog.Logger
}

func (r *Redis) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Redis) Get(ctx context.Context, key string) (*dataset.Dataset, bool) {
	b, err := r.Client.Get(ctx, KeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger().Warn("redis cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	ds, err := decodeEntry(b)
	if err != nil {
		r.logger().Warn("redis cache entry unreadable", "key", key, "error", err)
		return nil, false
	}
	return ds, true
}

func (r *Redis) Put(ctx context.Context, key string, ds *dataset.Dataset) error {
	b, err := encodeEntry(ds)
	if err != nil {
		return err
	}
	if err := r.Client.Set(ctx, KeyPrefix+key, b, r.TTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// entry is the stored form of a dataset.
type entry struct {
	Name string `json:"name"`
	CSV  string `json:"csv"`
}

func encodeEntry(ds *dataset.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := ds.WriteCSV(&buf); err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	b, err := json.Marshal(entry{Name: ds.Name, CSV: buf.String()})
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	return b, nil
}

func decodeEntry(b []byte) (*dataset.Dataset, error) {
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("unmarshal cache entry: %w", err)
	}
	return dataset.ReadCSV(e.Name, strings.NewReader(e.CSV))
}

// Options selects and configures a cache backend.
type Options struct {
	Backend   string // memory or redis
	Capacity  int
	RedisAddr string
	TTL       time.Duration
}

// New builds the configured backend. If Redis is requested but unreachable,
// it logs and falls back to an in-memory cache.
func New(ctx context.Context, opt Options, log *slog.Logger) Cache {
	if log == nil {
		log = slog.Default()
	}
	if opt.Backend != "redis" {
		return NewMemory(opt.Capacity)
	}
	if opt.RedisAddr == "" {
		log.Warn("cache_backend is redis but redis_addr is empty, using memory cache")
		return NewMemory(opt.Capacity)
	}
	client := redis.NewClient(&redis.Options{Addr: opt.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("redis unreachable, using memory cache", "addr", opt.RedisAddr, "error", err)
		_ = client.Close()
		return NewMemory(opt.Capacity)
	}
	log.Info("connected to redis", "addr", opt.RedisAddr)
	return &Redis{Client: client, TTL: opt.TTL, Logger: log}
}
