// Package session caches authenticated supplier cookie jars between refreshes
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	perr "supplysync/internal/platform/errors"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a saved jar stays usable
const DefaultTTL = 8 * time.Hour

// Cookie is the stored form of one cookie
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Store saves and loads cookie jars per supplier
type Store interface {
	Load(ctx context.Context, supplierID int64) ([]*http.Cookie, bool, error)
	Save(ctx context.Context, supplierID int64, cookies []*http.Cookie) error
	Drop(ctx context.Context, supplierID int64) error
}

func toStored(cs []*http.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cs))
	for _, c := range cs {
		out = append(out, Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func fromStored(cs []Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cs))
	for _, c := range cs {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return out
}

// Redis keeps jars as JSON under supplysync:session:<supplier> with a TTL
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis returns a Redis backed store. ttl <= 0 uses DefaultTTL
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, ttl: ttl}
}

func key(supplierID int64) string { return "supplysync:session:" + strconv.FormatInt(supplierID, 10) }

// Load returns the saved jar, ok is false when none or expired
func (r *Redis) Load(ctx context.Context, supplierID int64) ([]*http.Cookie, bool, error) {
	val, err := r.rdb.Get(ctx, key(supplierID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, perr.Wrapf(err, perr.ErrorCodeUnavailable, "session load %d", supplierID)
	}
	var cs []Cookie
	if err := json.Unmarshal(val, &cs); err != nil {
		// unreadable entries are treated as absent
		return nil, false, nil
	}
	return fromStored(cs), len(cs) > 0, nil
}

// Save stores the jar with the configured TTL
func (r *Redis) Save(ctx context.Context, supplierID int64, cookies []*http.Cookie) error {
	b, err := json.Marshal(toStored(cookies))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "session encode")
	}
	if err := r.rdb.Set(ctx, key(supplierID), b, r.ttl).Err(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "session save %d", supplierID)
	}
	return nil
}

// Drop forgets a jar, used after a rejected session
func (r *Redis) Drop(ctx context.Context, supplierID int64) error {
	if err := r.rdb.Del(ctx, key(supplierID)).Err(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "session drop %d", supplierID)
	}
	return nil
}

// Memory is an in-process Store for tests and single-node runs
type Memory struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[int64]memEntry
}

type memEntry struct {
	cookies []Cookie
	expires time.Time
}

// NewMemory returns an empty Memory store
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, now: time.Now, m: map[int64]memEntry{}}
}

// Load implements Store
func (m *Memory) Load(_ context.Context, supplierID int64) ([]*http.Cookie, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.m[supplierID]
	if !ok || !m.now().Before(e.expires) {
		delete(m.m, supplierID)
		return nil, false, nil
	}
	return fromStored(e.cookies), true, nil
}

// Save implements Store
func (m *Memory) Save(_ context.Context, supplierID int64, cookies []*http.Cookie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[supplierID] = memEntry{cookies: toStored(cookies), expires: m.now().Add(m.ttl)}
	return nil
}

// Drop implements Store
func (m *Memory) Drop(_ context.Context, supplierID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, supplierID)
	return nil
}
