package order

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/storefront-orders/internal/inventory"
)

const queryTimeout = 5 * time.Second

// Store is the durable order store. Everything that mutates orders or stock runs
// inside WithinTx so that it commits or rolls back as one unit.
type Store interface {
	WithinTx(ctx context.Context, fn func(Tx) error) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, error)
	// All returns every order with its items, oldest first.
	All(ctx context.Context) ([]Order, error)
}

type Tx interface {
	// Insert persists o and its items, filling in the generated ids.
	Insert(ctx context.Context, o *Order) error
	// GetForUpdate loads an order with its items and holds it exclusively until the
	// transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*Order, error)
	// UpdateStatus moves o to the given status if o.Version still matches the stored
	// row, bumping the version. It fails with ErrConcurrentModification otherwise.
	UpdateStatus(ctx context.Context, o *Order, to Status) error
	// AdjustStock applies a ledger delta as part of the transaction.
	AdjustStock(ctx context.Context, variantID int64, delta int) (int, error)
}

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (r *PGStore) WithinTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return asConflict(err)
	}
	return asConflict(errors.Wrap(tx.Commit(ctx), "commit"))
}

// asConflict turns deadlock and serialization aborts into ErrConcurrentModification,
// which callers may retry from scratch.
func asConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40P01" || pgErr.Code == "40001") {
		return errors.Wrapf(ErrConcurrentModification, "%s (sqlstate %s)", pgErr.Message, pgErr.Code)
	}
	return err
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) Insert(ctx context.Context, o *Order) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, customer_name, phone, shipping_address, delivery_instructions,
		                    subtotal, tax, shipping_cost, total, item_count, status, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
		RETURNING id
	`, o.Number, o.CustomerName, o.Phone, o.ShippingAddress, o.DeliveryInstructions,
		o.Subtotal.String(), o.Tax.String(), o.ShippingCost.String(), o.Total.String(),
		o.ItemCount, string(o.Status), o.Version, o.CreatedAt).Scan(&o.ID)
	if err != nil {
		return errors.Wrap(err, "insert order")
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if err := t.tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, variant_id, product_name, sku, color, size,
			                         quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING id
		`, o.ID, it.ProductID, nullableID(it.VariantID), it.ProductName, it.SKU, it.Color, it.Size,
			it.Quantity, it.UnitPrice.String(), it.LineTotal.String()).Scan(&it.ID); err != nil {
			return errors.Wrap(err, "insert order item")
		}
	}
	return nil
}

func (t *pgTx) GetForUpdate(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(t.tx.QueryRow(ctx, selectOrder+` WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, errors.Wrap(err, "lock order")
	}
	if o.Items, err = loadItems(ctx, t.tx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (t *pgTx) UpdateStatus(ctx context.Context, o *Order, to Status) error {
	err := t.tx.QueryRow(ctx, `
		UPDATE orders
		SET status = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $3
		RETURNING version, updated_at
	`, o.ID, string(to), o.Version).Scan(&o.Version, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrConcurrentModification
	}
	if err != nil {
		return errors.Wrap(err, "update order status")
	}
	o.Status = to
	return nil
}

func (t *pgTx) AdjustStock(ctx context.Context, variantID int64, delta int) (int, error) {
	return inventory.AdjustWith(ctx, t.tx, variantID, delta, false)
}

func (r *PGStore) GetByID(ctx context.Context, id int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, selectOrder+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	if o.Items, err = loadItems(ctx, r.db, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGStore) List(ctx context.Context, f ListFilter) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, selectOrder+`
		WHERE ($1 = '' OR order_number ILIKE '%'||$1||'%' OR customer_name ILIKE '%'||$1||'%' OR phone ILIKE '%'||$1||'%')
		  AND ($2 = '' OR status = $2)
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)
		ORDER BY created_at DESC, id DESC
		LIMIT $5 OFFSET $6
	`, strings.TrimSpace(f.Search), string(f.Status), nullableTime(f.From), nullableTime(f.To), f.Limit, f.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *PGStore) All(ctx context.Context) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, selectOrder+` ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "scan orders")
	}
	var out []Order
	index := map[int64]int{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan order")
		}
		index[o.ID] = len(out)
		out = append(out, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "scan orders")
	}

	items, err := r.db.Query(ctx, selectItem+` ORDER BY order_id, id`)
	if err != nil {
		return nil, errors.Wrap(err, "scan order items")
	}
	defer items.Close()
	for items.Next() {
		it, err := scanItem(items)
		if err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		if i, ok := index[it.OrderID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, items.Err()
}

const selectOrder = `
	SELECT id, order_number, customer_name, phone, shipping_address, delivery_instructions,
	       subtotal::text, tax::text, shipping_cost::text, total::text,
	       item_count, status, version, created_at, updated_at
	FROM orders`

const selectItem = `
	SELECT id, order_id, product_id, COALESCE(variant_id, 0), product_name, sku, color, size,
	       quantity, unit_price::text, line_total::text
	FROM order_items`

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadItems(ctx context.Context, q queryer, orderID int64) ([]Item, error) {
	rows, err := q.Query(ctx, selectItem+` WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "list order items")
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order item")
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o                      Order
		status                 string
		sub, tax, ship, totalS string
	)
	if err := row.Scan(&o.ID, &o.Number, &o.CustomerName, &o.Phone, &o.ShippingAddress, &o.DeliveryInstructions,
		&sub, &tax, &ship, &totalS, &o.ItemCount, &status, &o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = Status(status)
	var err error
	if o.Subtotal, err = decimal.NewFromString(sub); err != nil {
		return nil, err
	}
	if o.Tax, err = decimal.NewFromString(tax); err != nil {
		return nil, err
	}
	if o.ShippingCost, err = decimal.NewFromString(ship); err != nil {
		return nil, err
	}
	if o.Total, err = decimal.NewFromString(totalS); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanItem(row pgx.Row) (Item, error) {
	var (
		it          Item
		price, line string
	)
	if err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariantID, &it.ProductName, &it.SKU,
		&it.Color, &it.Size, &it.Quantity, &price, &line); err != nil {
		return it, err
	}
	var err error
	if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
		return it, err
	}
	it.LineTotal, err = decimal.NewFromString(line)
	return it, err
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
