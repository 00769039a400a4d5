package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wichananm65/gifty-backend/internal/cart"
	"github.com/wichananm65/gifty-backend/internal/infrastructure/database/postgres"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	orderColumns = `id, owner_id, items, gift_box_id, delivery, total_price, status, idempotency_key, created_at, updated_at`

	insertOrderQuery = `
		INSERT INTO orders (owner_id, items, gift_box_id, delivery, total_price, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + orderColumns
	getOrderByIDQuery  = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	getOrderByKeyQuery = `SELECT ` + orderColumns + ` FROM orders WHERE owner_id = $1 AND idempotency_key = $2`
	listOwnOrdersQuery = `SELECT ` + orderColumns + ` FROM orders WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	listOrdersQuery    = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
	updateStatusQuery  = `
		UPDATE orders SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + orderColumns
	deleteOrderQuery = `DELETE FROM orders WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o Order) (Order, error) {
	return insertOrder(ctx, r.db, o)
}

// Place inserts the order and deletes the owner's cart at cartVersion in
// one transaction. Cart errors (cart.ErrNotFound, cart.ErrVersionConflict)
// are returned as is and nothing is written.
func (r *PostgresRepository) Place(ctx context.Context, o Order, cartVersion int64) (Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := cart.DeleteIfVersionTx(ctx, tx, o.OwnerID, cartVersion); err != nil {
		return Order{}, err
	}
	created, err := insertOrder(ctx, tx, o)
	if err != nil {
		return Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("commit order: %w", err)
	}
	return created, nil
}

func insertOrder(ctx context.Context, ex cart.Execer, o Order) (Order, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return Order{}, fmt.Errorf("marshal order items: %w", err)
	}
	deliveryJSON, err := json.Marshal(o.Delivery)
	if err != nil {
		return Order{}, fmt.Errorf("marshal delivery: %w", err)
	}
	var key sql.NullString
	if o.IdempotencyKey != "" {
		key = sql.NullString{String: o.IdempotencyKey, Valid: true}
	}

	row := ex.QueryRowContext(ctx, insertOrderQuery,
		o.OwnerID, itemsJSON, o.GiftBoxID, deliveryJSON, o.TotalPrice, o.Status, key)
	created, err := scanOrder(row)
	if postgres.IsUniqueViolation(err) {
		return Order{}, ErrDuplicateOrder
	}
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("query order: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) GetByIdempotencyKey(ctx context.Context, ownerID int, key string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderByKeyQuery, ownerID, key))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("query order by key: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int) ([]Order, error) {
	return r.list(ctx, listOwnOrdersQuery, ownerID)
}

func (r *PostgresRepository) List(ctx context.Context) ([]Order, error) {
	return r.list(ctx, listOrdersQuery)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int, status string) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, updateStatusQuery, id, status))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("update order status: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteOrderQuery, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o            Order
		itemsJSON    []byte
		deliveryJSON []byte
		giftBoxID    sql.NullInt64
		key          sql.NullString
	)
	err := row.Scan(&o.ID, &o.OwnerID, &itemsJSON, &giftBoxID, &deliveryJSON,
		&o.TotalPrice, &o.Status, &key, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return Order{}, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(deliveryJSON, &o.Delivery); err != nil {
		return Order{}, fmt.Errorf("unmarshal delivery: %w", err)
	}
	if giftBoxID.Valid {
		id := int(giftBoxID.Int64)
		o.GiftBoxID = &id
	}
	o.IdempotencyKey = key.String
	return o, nil
}
