package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "finledger:idem:"

// Redis keeps records in Redis so replays survive restarts and span replicas.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis wraps a connected client; ttl <= 0 selects DefaultTTL.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, ttl: ttl}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return NewRedis(rdb, ttl), nil
}

func (r *Redis) Get(ctx context.Context, key string) (Record, bool, error) {
	b, err := r.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode idempotency record %q: %w", key, err)
	}
	return rec, true, nil
}

// Reserve writes a pending record with SETNX, so exactly one caller wins the key.
func (r *Redis) Reserve(ctx context.Context, key, bodyHash string) (bool, error) {
	b, err := json.Marshal(Record{BodyHash: bodyHash, Pending: true})
	if err != nil {
		return false, err
	}
	return r.rdb.SetNX(ctx, keyPrefix+key, b, lease(r.ttl)).Result()
}

// Save overwrites the reservation with the completed record for the full ttl.
func (r *Redis) Save(ctx context.Context, key string, rec Record) error {
	rec.Pending = false
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, keyPrefix+key, b, r.ttl).Err()
}

// Release deletes the reservation.
func (r *Redis) Release(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, keyPrefix+key).Err()
}

// Ready pings the server.
func (r *Redis) Ready(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

// Close releases the client.
func (r *Redis) Close() error { return r.rdb.Close() }
