package giftbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	giftBoxColumns = `id, name, theme, max_items, base_price, image, model_path, scale, created_at, updated_at`

	listGiftBoxesQuery  = `SELECT ` + giftBoxColumns + ` FROM gift_boxes ORDER BY base_price ASC, id ASC`
	getGiftBoxByIDQuery = `SELECT ` + giftBoxColumns + ` FROM gift_boxes WHERE id = $1`
	insertGiftBoxQuery  = `
		INSERT INTO gift_boxes (name, theme, max_items, base_price, image, model_path, scale)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + giftBoxColumns
	updateGiftBoxQuery = `
		UPDATE gift_boxes
		SET name = $1, theme = $2, max_items = $3, base_price = $4, image = $5, model_path = $6, scale = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + giftBoxColumns
	deleteGiftBoxQuery = `DELETE FROM gift_boxes WHERE id = $1`
	countGiftBoxQuery  = `SELECT COUNT(*) FROM gift_boxes`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]GiftBox, error) {
	rows, err := r.db.QueryContext(ctx, listGiftBoxesQuery)
	if err != nil {
		return nil, fmt.Errorf("query gift boxes: %w", err)
	}
	defer rows.Close()

	boxes := make([]GiftBox, 0)
	for rows.Next() {
		b, err := scanGiftBox(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gift box row: %w", err)
		}
		boxes = append(boxes, b)
	}
	return boxes, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (GiftBox, error) {
	return r.one(ctx, "query gift box", getGiftBoxByIDQuery, id)
}

func (r *PostgresRepository) Create(ctx context.Context, b GiftBox) (GiftBox, error) {
	return r.one(ctx, "insert gift box", insertGiftBoxQuery,
		b.Name, b.Theme, b.MaxItems, b.BasePrice, b.Image, b.ModelPath, b.Scale)
}

func (r *PostgresRepository) Update(ctx context.Context, id int, b GiftBox) (GiftBox, error) {
	return r.one(ctx, "update gift box", updateGiftBoxQuery,
		b.Name, b.Theme, b.MaxItems, b.BasePrice, b.Image, b.ModelPath, b.Scale, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteGiftBoxQuery, id)
	if err != nil {
		return fmt.Errorf("delete gift box: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countGiftBoxQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("count gift boxes: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) one(ctx context.Context, op, query string, args ...any) (GiftBox, error) {
	b, err := scanGiftBox(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return GiftBox{}, ErrNotFound
	}
	if err != nil {
		return GiftBox{}, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

func scanGiftBox(row rowScanner) (GiftBox, error) {
	var b GiftBox
	err := row.Scan(&b.ID, &b.Name, &b.Theme, &b.MaxItems, &b.BasePrice, &b.Image, &b.ModelPath, &b.Scale, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}
