package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/baedalgo/delivery/internal/core/domain"
	"github.com/baedalgo/delivery/internal/core/notify"
	"github.com/baedalgo/delivery/internal/metrics"
	"github.com/baedalgo/delivery/internal/port"
)

type OrderService struct {
	orders     port.OrderRepository
	users      port.UserDirectory
	dispatcher *Dispatcher
	logger     zerolog.Logger
}

func NewOrderService(orders port.OrderRepository, users port.UserDirectory, dispatcher *Dispatcher, logger zerolog.Logger) *OrderService {
	return &OrderService{
		orders:     orders,
		users:      users,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// TransitionResult is the caller-visible outcome of a successful
// status change.
type TransitionResult struct {
	OrderID   string
	Status    domain.OrderStatus
	UpdatedAt time.Time
}

// Transition validates and applies a status change, then hands the
// notification to the dispatcher. The status mutation is the durable
// fact; notification delivery never affects the returned result.
//
// Per-order serialization relies on the repository's compare-and-swap:
// of two concurrent transitions from the same source status, exactly
// one lands.
func (s *OrderService) Transition(ctx context.Context, orderID string, requested domain.OrderStatus, actorID string) (*TransitionResult, error) {
	if !requested.Valid() {
		metrics.TransitionsRejected.WithLabelValues("unknown_status").Inc()
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStatus, string(requested))
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		metrics.TransitionsRejected.WithLabelValues("not_found").Inc()
		return nil, domain.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(requested) {
		metrics.TransitionsRejected.WithLabelValues("invalid_transition").Inc()
		return nil, &domain.InvalidTransitionError{From: order.Status, To: requested}
	}

	role, err := s.users.GetRole(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.TransitionsRejected.WithLabelValues("forbidden").Inc()
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("resolve actor role: %w", err)
	}
	if !domain.RoleAllowed(role, requested) {
		metrics.TransitionsRejected.WithLabelValues("forbidden").Inc()
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	if now.Before(order.UpdatedAt) {
		// Keep updated_at monotonic even under clock skew.
		now = order.UpdatedAt
	}

	ok, err := s.orders.UpdateOrderStatus(ctx, orderID, order.Status, requested, now)
	if err != nil {
		return nil, fmt.Errorf("persist status: %w", err)
	}
	if !ok {
		// Lost the race to a concurrent transition. Report against the
		// status that actually won; the requested edge may no longer
		// be open.
		metrics.TransitionsRejected.WithLabelValues("conflict").Inc()
		from := order.Status
		if fresh, ferr := s.orders.GetOrder(ctx, orderID); ferr == nil && fresh != nil {
			from = fresh.Status
		}
		return nil, &domain.InvalidTransitionError{From: from, To: requested}
	}

	metrics.TransitionsApplied.WithLabelValues(string(requested)).Inc()
	s.logger.Info().
		Str("order_id", orderID).
		Str("from", string(order.Status)).
		Str("to", string(requested)).
		Msg("order status changed")

	s.dispatcher.Enqueue(domain.Notification{
		OrderID: orderID,
		UserID:  order.UserID,
		Status:  requested,
		Text:    notify.Message(requested),
	})

	return &TransitionResult{OrderID: orderID, Status: requested, UpdatedAt: now}, nil
}

// Create opens a new order in WAITING.
func (s *OrderService) Create(ctx context.Context, userID, storeID string) (*domain.Order, error) {
	now := time.Now()
	order := domain.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		StoreID:   storeID,
		Status:    domain.StatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}
