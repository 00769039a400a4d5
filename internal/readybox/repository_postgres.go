package readybox

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

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	readyBoxColumns = `id, name, description, gift_box_id, items, total_price, image, is_active, created_at, updated_at`

	listReadyBoxesQuery       = `SELECT ` + readyBoxColumns + ` FROM ready_boxes ORDER BY created_at DESC, id DESC`
	listActiveReadyBoxesQuery = `SELECT ` + readyBoxColumns + ` FROM ready_boxes WHERE is_active ORDER BY created_at DESC, id DESC`
	getReadyBoxByIDQuery      = `SELECT ` + readyBoxColumns + ` FROM ready_boxes WHERE id = $1`
	insertReadyBoxQuery       = `
		INSERT INTO ready_boxes (name, description, gift_box_id, items, total_price, image, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + readyBoxColumns
	updateReadyBoxQuery = `
		UPDATE ready_boxes
		SET name = $1, description = $2, gift_box_id = $3, items = $4, total_price = $5, image = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING ` + readyBoxColumns
	deleteReadyBoxQuery      = `DELETE FROM ready_boxes WHERE id = $1`
	countReadyBoxesQuery     = `SELECT COUNT(*) FROM ready_boxes`
	countActiveReadyBoxQuery = `SELECT COUNT(*) FROM ready_boxes WHERE is_active`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, activeOnly bool) ([]ReadyBox, error) {
	query := listReadyBoxesQuery
	if activeOnly {
		query = listActiveReadyBoxesQuery
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ready boxes: %w", err)
	}
	defer rows.Close()

	boxes := make([]ReadyBox, 0)
	for rows.Next() {
		rb, err := scanReadyBox(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ready box row: %w", err)
		}
		boxes = append(boxes, rb)
	}
	return boxes, rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (ReadyBox, error) {
	return r.one(ctx, "query ready box", getReadyBoxByIDQuery, id)
}

func (r *PostgresRepository) Create(ctx context.Context, rb ReadyBox) (ReadyBox, error) {
	itemsJSON, err := json.Marshal(rb.Items)
	if err != nil {
		return ReadyBox{}, fmt.Errorf("marshal ready box items: %w", err)
	}
	return r.one(ctx, "insert ready box", insertReadyBoxQuery,
		rb.Name, rb.Description, rb.GiftBoxID, itemsJSON, rb.TotalPrice, rb.Image, rb.IsActive)
}

func (r *PostgresRepository) Update(ctx context.Context, id int, rb ReadyBox) (ReadyBox, error) {
	itemsJSON, err := json.Marshal(rb.Items)
	if err != nil {
		return ReadyBox{}, fmt.Errorf("marshal ready box items: %w", err)
	}
	return r.one(ctx, "update ready box", updateReadyBoxQuery,
		rb.Name, rb.Description, rb.GiftBoxID, itemsJSON, rb.TotalPrice, rb.Image, rb.IsActive, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, deleteReadyBoxQuery, id)
	if err != nil {
		return fmt.Errorf("delete ready box: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Count(ctx context.Context, activeOnly bool) (int, error) {
	query := countReadyBoxesQuery
	if activeOnly {
		query = countActiveReadyBoxQuery
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ready boxes: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) one(ctx context.Context, op, query string, args ...any) (ReadyBox, error) {
	rb, err := scanReadyBox(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return ReadyBox{}, ErrNotFound
	}
	if err != nil {
		return ReadyBox{}, fmt.Errorf("%s: %w", op, err)
	}
	return rb, nil
}

func scanReadyBox(row rowScanner) (ReadyBox, error) {
	var (
		rb        ReadyBox
		giftBoxID sql.NullInt64
		itemsJSON []byte
	)
	err := row.Scan(&rb.ID, &rb.Name, &rb.Description, &giftBoxID, &itemsJSON,
		&rb.TotalPrice, &rb.Image, &rb.IsActive, &rb.CreatedAt, &rb.UpdatedAt)
	if err != nil {
		return ReadyBox{}, err
	}
	if err := json.Unmarshal(itemsJSON, &rb.Items); err != nil {
		return ReadyBox{}, fmt.Errorf("unmarshal ready box items: %w", err)
	}
	if rb.Items == nil {
		rb.Items = []Item{}
	}
	if giftBoxID.Valid {
		id := int(giftBoxID.Int64)
		rb.GiftBoxID = &id
	}
	return rb, nil
}
