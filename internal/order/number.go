package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// FirstNumber is the first order number handed out by every Numberer.
const FirstNumber = 101

// Numberer hands out unique, increasing order numbers. Numbers consumed by a
// checkout that later fails are not reused.
type Numberer interface {
	Next(ctx context.Context) (string, error)
}

func FormatNumber(n int64) string { return fmt.Sprintf("ORD-%d", n) }

// SequenceNumberer draws from the order_number_seq Postgres sequence.
type SequenceNumberer struct{ db *pgxpool.Pool }

func NewSequenceNumberer(db *pgxpool.Pool) *SequenceNumberer { return &SequenceNumberer{db: db} }

func (s *SequenceNumberer) Next(ctx context.Context) (string, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		return "", errors.Wrap(err, "next order number")
	}
	return FormatNumber(n), nil
}

// RedisNumberer increments a shared counter key.
type RedisNumberer struct {
	rdb *redis.Client
	key string
}

func NewRedisNumberer(rdb *redis.Client, key string) *RedisNumberer {
	if key == "" {
		key = "orders:number"
	}
	return &RedisNumberer{rdb: rdb, key: key}
}

func (r *RedisNumberer) Next(ctx context.Context) (string, error) {
	n, err := r.rdb.Incr(ctx, r.key).Result()
	if err != nil {
		return "", errors.Wrap(err, "next order number")
	}
	return FormatNumber(n + FirstNumber - 1), nil
}

type MemoryNumberer struct {
	mu   sync.Mutex
	next int64
}

func NewMemoryNumberer() *MemoryNumberer { return &MemoryNumberer{next: FirstNumber} }

func (m *MemoryNumberer) Next(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.next
	m.next++
	return FormatNumber(n), nil
}
