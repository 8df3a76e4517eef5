// Package inventory holds the catalog read model and the Stock Ledger that owns
// per-variant stock quantities.
package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const queryTimeout = 5 * time.Second

// Querier is satisfied by *pgxpool.Pool and pgx.Tx, so stock adjustments can run
// standalone or inside a caller's transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Adjust(ctx context.Context, variantID int64, delta int, override bool) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return AdjustWith(ctx, r.db, variantID, delta, override)
}

// AdjustWith applies the ledger rule in a single conditional UPDATE. The row lock taken
// by the UPDATE serializes concurrent adjustments of one variant, and the WHERE clause is
// re-evaluated against the committed quantity, so two decrements racing for the last unit
// cannot both succeed.
func AdjustWith(ctx context.Context, q Querier, variantID int64, delta int, override bool) (int, error) {
	var qty int
	err := q.QueryRow(ctx, `
		UPDATE variants
		SET stock = CASE WHEN $3 THEN GREATEST(stock + $2, 0) ELSE stock + $2 END,
		    updated_at = NOW()
		WHERE id = $1 AND ($3 OR stock + $2 >= 0)
		RETURNING stock
	`, variantID, delta, override).Scan(&qty)
	if err == nil {
		return qty, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, errors.Wrapf(err, "adjust stock of variant %d", variantID)
	}

	var current int
	err = q.QueryRow(ctx, `SELECT stock FROM variants WHERE id = $1`, variantID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &VariantNotFoundError{VariantID: variantID}
	}
	if err != nil {
		return 0, errors.Wrapf(err, "read stock of variant %d", variantID)
	}
	return 0, &InsufficientStockError{VariantID: variantID, Available: current, Requested: -delta}
}

func (r *PGRepo) GetVariant(ctx context.Context, id int64) (*Variant, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `
		SELECT id, product_id, sku, color, size, price::text, stock, updated_at
		FROM variants WHERE id = $1
	`, id)
	v, err := scanVariant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &VariantNotFoundError{VariantID: id}
	}
	if err != nil {
		return nil, errors.Wrap(err, "get variant")
	}
	return v, nil
}

func (r *PGRepo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		p     Product
		price string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, price::text, created_at
		FROM products WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &price, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, errors.Wrap(err, "parse product price")
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, sku, color, size, price::text, stock, updated_at
		FROM variants WHERE product_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, errors.Wrap(err, "list variants")
	}
	defer rows.Close()
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan variant")
		}
		p.Variants = append(p.Variants, *v)
		p.TotalStock += v.Stock
	}
	return &p, rows.Err()
}

func (r *PGRepo) ListProducts(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.description, p.price::text,
		       COALESCE(SUM(v.stock), 0)::int, p.created_at
		FROM products p
		LEFT JOIN variants v ON v.product_id = p.id
		WHERE ($1 = '' OR p.name ILIKE '%'||$1||'%' OR p.description ILIKE '%'||$1||'%')
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`, search, q.Limit, q.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		var (
			p     Product
			price string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &price, &p.TotalStock, &p.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, errors.Wrap(err, "parse product price")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) ProductNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, name FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "product names")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, errors.Wrap(err, "scan product name")
		}
		out[id] = name
	}
	return out, rows.Err()
}

func scanVariant(row pgx.Row) (*Variant, error) {
	var (
		v     Variant
		price *string
	)
	if err := row.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Color, &v.Size, &price, &v.Stock, &v.UpdatedAt); err != nil {
		return nil, err
	}
	if price != nil {
		d, err := decimal.NewFromString(*price)
		if err != nil {
			return nil, err
		}
		v.Price = decimal.NewNullDecimal(d)
	}
	return &v, nil
}
