package port

import (
	"context"
	"time"

	"github.com/baedalgo/delivery/internal/core/domain"
)

type OrderRepository interface {
	// CreateOrder persists a new order.
	CreateOrder(ctx context.Context, order domain.Order) error

	// GetOrder retrieves an order by ID, nil if absent.
	GetOrder(ctx context.Context, id string) (*domain.Order, error)

	// UpdateOrderStatus applies a compare-and-swap status change: the
	// update only lands if the stored status still equals from.
	// Returns false when the swap lost to a concurrent writer.
	UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error)
}
