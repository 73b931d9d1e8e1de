package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domcart "example.com/coffee-shop/app/internal/domain/cart"
)

// CartRepository stores each cart session as one JSON snapshot row.
type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) Load(ctx context.Context, sessionID string) ([]domcart.LineItem, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT items FROM carts WHERE session_id = ?`, sessionID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart %s: %w", sessionID, err)
	}

	var items []domcart.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	return items, nil
}

func (r *CartRepository) Save(ctx context.Context, sessionID string, items []domcart.LineItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", sessionID, err)
	}
	_, err = r.db.ExecContext(ctx, `
        INSERT INTO carts (session_id, items) VALUES (?, ?)
        ON DUPLICATE KEY UPDATE items = VALUES(items)
    `, sessionID, raw)
	if err != nil {
		return fmt.Errorf("save cart %s: %w", sessionID, err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete cart %s: %w", sessionID, err)
	}
	return nil
}
