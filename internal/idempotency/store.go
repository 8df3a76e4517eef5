// Package idempotency makes checkout safe to retry: a request carrying a key that
// already produced an order gets that order back instead of a new one.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const Header = "Idempotency-Key"

// ErrInFlight means another request holding the same key has not finished yet.
var ErrInFlight = errors.New("a request with this idempotency key is in progress")

// ErrKeyReused means the key was first used with a different request body.
var ErrKeyReused = errors.New("idempotency key was used with a different request")

const pending = "pending"

// Store tracks keys through claim -> complete, or claim -> release on failure.
// Every key is bound to the fingerprint of the request that claimed it.
type Store interface {
	// Claim reserves key for a request with the given fingerprint. When the key
	// already completed it returns the order id with claimed == false. A different
	// fingerprint fails with ErrKeyReused.
	Claim(ctx context.Context, key, fingerprint string) (orderID int64, claimed bool, err error)
	Complete(ctx context.Context, key, fingerprint string, orderID int64) error
	Release(ctx context.Context, key string) error
}

// Normalize trims a client key and rejects ones that are empty or too long.
func Normalize(raw string) (string, bool) {
	k := strings.TrimSpace(raw)
	if k == "" || len(k) > 128 {
		return "", false
	}
	return k, true
}

// Fingerprint hashes the JSON encoding of a decoded request.
func Fingerprint(req any) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "fingerprint request")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "idem:checkout:"}
}

func (s *RedisStore) Claim(ctx context.Context, key, fingerprint string) (int64, bool, error) {
	k := s.prefix + key
	ok, err := s.rdb.SetNX(ctx, k, encodeValue(pending, fingerprint), s.ttl).Result()
	if err != nil {
		return 0, false, errors.Wrap(err, "claim idempotency key")
	}
	if ok {
		return 0, true, nil
	}
	v, err := s.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; let the caller retry
		return 0, false, ErrInFlight
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "read idempotency key")
	}
	return parseValue(v, fingerprint)
}

func (s *RedisStore) Complete(ctx context.Context, key, fingerprint string, orderID int64) error {
	v := encodeValue(strconv.FormatInt(orderID, 10), fingerprint)
	return errors.Wrap(s.rdb.Set(ctx, s.prefix+key, v, s.ttl).Err(), "complete idempotency key")
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return errors.Wrap(s.rdb.Del(ctx, s.prefix+key).Err(), "release idempotency key")
}

// Stored values are "<state>|<fingerprint>", where state is pending or an order id.
func encodeValue(state, fingerprint string) string { return state + "|" + fingerprint }

func parseValue(v, fingerprint string) (int64, bool, error) {
	state, fp, ok := strings.Cut(v, "|")
	if !ok {
		return 0, false, errors.Errorf("corrupt idempotency value %q", v)
	}
	if fp != fingerprint {
		return 0, false, ErrKeyReused
	}
	if state == pending {
		return 0, false, ErrInFlight
	}
	id, err := strconv.ParseInt(state, 10, 64)
	if err != nil {
		return 0, false, errors.Wrapf(err, "corrupt idempotency value %q", v)
	}
	return id, false, nil
}

type memEntry struct {
	value   string
	expires time.Time
}

// MemoryStore is a single-process Store.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]memEntry
	now  func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, keys: map[string]memEntry{}, now: time.Now}
}

func (m *MemoryStore) Claim(_ context.Context, key, fingerprint string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.keys[key]; ok && m.now().Before(e.expires) {
		return parseValue(e.value, fingerprint)
	}
	m.keys[key] = memEntry{value: encodeValue(pending, fingerprint), expires: m.now().Add(m.ttl)}
	return 0, true, nil
}

func (m *MemoryStore) Complete(_ context.Context, key, fingerprint string, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = memEntry{
		value:   encodeValue(strconv.FormatInt(orderID, 10), fingerprint),
		expires: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}
