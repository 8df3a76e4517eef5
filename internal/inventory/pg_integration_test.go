package inventory

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/storefront-orders/internal/migrations"
)

// openTestDB connects to POSTGRES_DSN and migrates it, skipping when it is unset.
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	require.NoError(t, migrations.Up(dsn))
	db, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func seedVariant(t *testing.T, db *pgxpool.Pool, stock int) int64 {
	t.Helper()
	ctx := context.Background()
	var pid, vid int64
	require.NoError(t, db.QueryRow(ctx, `INSERT INTO products (name, price) VALUES ('Blusa', 25) RETURNING id`).Scan(&pid))
	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO variants (product_id, sku, stock) VALUES ($1, $2, $3) RETURNING id`,
		pid, "IT-"+uuid.NewString(), stock).Scan(&vid))
	t.Cleanup(func() { _, _ = db.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, pid) })
	return vid
}

func TestPGAdjustLastUnitRace(t *testing.T) {
	db := openTestDB(t)
	repo := NewPGRepo(db)
	vid := seedVariant(t, db, 1)

	results := make([]error, 8)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			_, results[i] = repo.Adjust(context.Background(), vid, -1, false)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	won := 0
	for _, err := range results {
		if err == nil {
			won++
			continue
		}
		assert.ErrorIs(t, err, ErrInsufficientStock)
	}
	assert.Equal(t, 1, won)

	v, err := repo.GetVariant(context.Background(), vid)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Stock)
}

func TestPGAdjustWithInsideTransaction(t *testing.T) {
	db := openTestDB(t)
	vid := seedVariant(t, db, 2)
	ctx := context.Background()

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	qty, err := AdjustWith(ctx, tx, vid, -2, false)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
	require.NoError(t, tx.Rollback(ctx))

	_, err = AdjustWith(ctx, db, vid, -3, false)
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 2, ise.Available)

	qty, err = AdjustWith(ctx, db, vid, -5, true)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)

	_, err = AdjustWith(ctx, db, -1, 1, false)
	assert.ErrorIs(t, err, ErrVariantNotFound)
}
