package admin

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

var (
	ErrNotFound     = errors.New("admin not found")
	ErrAlreadyExist = errors.New("admin already exists")
)

type Repository interface {
	Create(ctx context.Context, a *Admin) error
	GetByEmail(ctx context.Context, email string) (*Admin, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, a *Admin) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO admins (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`, a.ID, a.Email, a.PasswordHash).Scan(&a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExist
	}
	return errors.Wrap(err, "create admin")
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var a Admin
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM admins WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get admin")
	}
	return &a, nil
}

type MemoryRepo struct {
	mu     sync.Mutex
	admins map[string]Admin
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{admins: map[string]Admin{}} }

func (m *MemoryRepo) Create(_ context.Context, a *Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(a.Email)
	if _, ok := m.admins[key]; ok {
		return ErrAlreadyExist
	}
	a.CreatedAt = time.Now().UTC()
	m.admins[key] = *a
	return nil
}

func (m *MemoryRepo) GetByEmail(_ context.Context, email string) (*Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}
