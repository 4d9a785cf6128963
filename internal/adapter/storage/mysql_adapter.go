package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/baedalgo/delivery/internal/core/domain"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) CreateOrder(ctx context.Context, order domain.Order) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, store_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.StoreID, order.Status,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := m.db.QueryRowContext(ctx, `
		SELECT id, user_id, store_id, status, created_at, updated_at
		FROM orders WHERE id = ?`, id,
	).Scan(&order.ID, &order.UserID, &order.StoreID, &order.Status,
		&order.CreatedAt, &order.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &order, nil
}

// UpdateOrderStatus is the compare-and-swap that serializes
// transitions on a single order: the row only changes when the stored
// status still matches from.
func (m *MySQLAdapter) UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE orders
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		to, at, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows == 1, nil
}

// UpsertSearch relies on the unique key over (user_id, keyword,
// region); the insert-on-conflict-increment is atomic on the server,
// so concurrent identical searches never lose updates.
func (m *MySQLAdapter) UpsertSearch(ctx context.Context, userID, keyword, region string, at time.Time) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO search_popularity (user_id, keyword, region, search_count, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON DUPLICATE KEY UPDATE search_count = search_count + 1, updated_at = VALUES(updated_at)`,
		userID, keyword, region, at,
	)
	if err != nil {
		return fmt.Errorf("upsert search: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) TopSearches(ctx context.Context, region string, limit int) ([]domain.SearchPopularity, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT user_id, keyword, region, search_count, updated_at
		FROM search_popularity
		WHERE region = ?
		ORDER BY search_count DESC, updated_at DESC
		LIMIT ?`, region, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top searches: %w", err)
	}
	defer rows.Close()

	var entries []domain.SearchPopularity
	for rows.Next() {
		var e domain.SearchPopularity
		if err := rows.Scan(&e.UserID, &e.Keyword, &e.Region, &e.Count, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search rows: %w", err)
	}
	return entries, nil
}
