package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartQuery = `
		SELECT owner_id, items, gift_box_id, version, created_at, updated_at
		FROM carts
		WHERE owner_id = $1`
	insertCartQuery = `
		INSERT INTO carts (owner_id, items, gift_box_id, version)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (owner_id) DO NOTHING
		RETURNING version, created_at, updated_at`
	updateCartQuery = `
		UPDATE carts
		SET items = $2, gift_box_id = $3, version = version + 1, updated_at = NOW()
		WHERE owner_id = $1 AND version = $4
		RETURNING version, created_at, updated_at`
	deleteCartQuery          = `DELETE FROM carts WHERE owner_id = $1`
	deleteCartIfVersionQuery = `DELETE FROM carts WHERE owner_id = $1 AND version = $2`
	cartExistsQuery          = `SELECT EXISTS (SELECT 1 FROM carts WHERE owner_id = $1)`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID int) (Cart, error) {
	var (
		c         Cart
		itemsJSON []byte
		giftBoxID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, getCartQuery, ownerID).
		Scan(&c.OwnerID, &itemsJSON, &giftBoxID, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Cart{}, ErrNotFound
	}
	if err != nil {
		return Cart{}, fmt.Errorf("query cart: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
		return Cart{}, fmt.Errorf("unmarshal cart items: %w", err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	if giftBoxID.Valid {
		id := int(giftBoxID.Int64)
		c.GiftBoxID = &id
	}
	return c, nil
}

func (r *PostgresRepository) Save(ctx context.Context, c Cart) (Cart, error) {
	if c.Items == nil {
		c.Items = []Item{}
	}
	itemsJSON, err := json.Marshal(c.Items)
	if err != nil {
		return Cart{}, fmt.Errorf("marshal cart items: %w", err)
	}

	var row *sql.Row
	if c.Version == 0 {
		row = r.db.QueryRowContext(ctx, insertCartQuery, c.OwnerID, itemsJSON, c.GiftBoxID)
	} else {
		row = r.db.QueryRowContext(ctx, updateCartQuery, c.OwnerID, itemsJSON, c.GiftBoxID, c.Version)
	}

	err = row.Scan(&c.Version, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Cart{}, ErrVersionConflict
	}
	if err != nil {
		return Cart{}, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID int) error {
	res, err := r.db.ExecContext(ctx, deleteCartQuery, ownerID)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteIfVersion(ctx context.Context, ownerID int, version int64) error {
	return DeleteIfVersionTx(ctx, r.db, ownerID, version)
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DeleteIfVersionTx runs the conditional cart delete on ex, so callers can
// make it part of a larger transaction.
func DeleteIfVersionTx(ctx context.Context, ex Execer, ownerID int, version int64) error {
	res, err := ex.ExecContext(ctx, deleteCartIfVersionQuery, ownerID, version)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var exists bool
	if err := ex.QueryRowContext(ctx, cartExistsQuery, ownerID).Scan(&exists); err != nil {
		return fmt.Errorf("check cart: %w", err)
	}
	if exists {
		return ErrVersionConflict
	}
	return ErrNotFound
}
