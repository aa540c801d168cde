// Package idempotency stores responses of write requests keyed by the client's
// Idempotency-Key so a retried request replays the first outcome instead of posting twice.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tinoosan/finledger/internal/errs"
)

const (
	// DefaultTTL bounds how long a stored response can be replayed.
	DefaultTTL = 24 * time.Hour
	// DefaultLease bounds how long a reservation blocks its key when the request never completes.
	DefaultLease = time.Minute
)

// ErrInFlight reports a key reserved by a request that has not finished yet.
var ErrInFlight = errors.New("idempotency: request in flight")

// Record is the stored outcome of one keyed request.
// A pending record marks a reservation and carries only the body hash.
type Record struct {
	BodyHash string `json:"body_hash"`
	Status   int    `json:"status"`
	Payload  []byte `json:"payload"`
	Pending  bool   `json:"pending,omitempty"`
}

// Store persists records.
//
// Reserve claims an unused key with a pending record and reports whether the caller won it.
// Save replaces the reservation with the completed outcome; Release drops it so the
// request can be retried.
type Store interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Reserve(ctx context.Context, key, bodyHash string) (bool, error)
	Save(ctx context.Context, key string, rec Record) error
	Release(ctx context.Context, key string) error
}

func lease(ttl time.Duration) time.Duration {
	if ttl < DefaultLease {
		return ttl
	}
	return DefaultLease
}

// HashBody fingerprints a request body.
func HashBody(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// Lookup returns the completed record for key when its body hash matches.
// A record stored under the same key for a different body yields errs.ErrConflict,
// and a reservation still being served yields ErrInFlight.
func Lookup(ctx context.Context, s Store, key, bodyHash string) (Record, bool, error) {
	rec, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return Record{}, false, err
	}
	if rec.BodyHash != bodyHash {
		return Record{}, false, fmt.Errorf("%w: idempotency key %q reused with a different body", errs.ErrConflict, key)
	}
	if rec.Pending {
		return Record{}, false, fmt.Errorf("%w: key %q", ErrInFlight, key)
	}
	return rec, true, nil
}

type item struct {
	rec     Record
	expires time.Time
}

// Memory is a process-local Store with per-key expiry.
type Memory struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]item
}

// NewMemory returns a Memory store; ttl <= 0 selects DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, now: time.Now, items: make(map[string]item)}
}

func (m *Memory) Get(_ context.Context, key string) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return Record{}, false, nil
	}
	if !m.now().Before(it.expires) {
		delete(m.items, key)
		return Record{}, false, nil
	}
	return it.rec, true, nil
}

func (m *Memory) Reserve(_ context.Context, key, bodyHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if it, ok := m.items[key]; ok && now.Before(it.expires) {
		return false, nil
	}
	m.items[key] = item{rec: Record{BodyHash: bodyHash, Pending: true}, expires: now.Add(lease(m.ttl))}
	return true, nil
}

func (m *Memory) Save(_ context.Context, key string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Payload = append([]byte(nil), rec.Payload...)
	rec.Pending = false
	m.items[key] = item{rec: rec, expires: m.now().Add(m.ttl)}
	return nil
}

// Release drops a pending reservation; completed records are kept.
func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[key]; ok && it.rec.Pending {
		delete(m.items, key)
	}
	return nil
}

// Ready always succeeds.
func (m *Memory) Ready(context.Context) error { return nil }
