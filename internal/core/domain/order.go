package domain

import (
	"errors"
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusWaiting    OrderStatus = "WAITING"
	StatusAccepted   OrderStatus = "ACCEPTED"
	StatusCooking    OrderStatus = "COOKING"
	StatusDelivering OrderStatus = "DELIVERING"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusRejected   OrderStatus = "REJECTED"
	StatusCanceled   OrderStatus = "CANCELED"
)

var (
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("actor not allowed to perform transition")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
)

// transitions is the single source of truth for the order lifecycle.
// A status with an empty edge set is terminal. CANCELED is reachable
// from every non-terminal status.
var transitions = map[OrderStatus][]OrderStatus{
	StatusWaiting:    {StatusAccepted, StatusRejected, StatusCanceled},
	StatusAccepted:   {StatusCooking, StatusCanceled},
	StatusCooking:    {StatusDelivering, StatusCanceled},
	StatusDelivering: {StatusCompleted, StatusCanceled},
	StatusCompleted:  {},
	StatusRejected:   {},
	StatusCanceled:   {},
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	edges, ok := transitions[s]
	return ok && len(edges) == 0
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleStore    Role = "STORE"
	RoleAdmin    Role = "ADMIN"
)

// edgeRoles maps a target status to the roles allowed to request it.
// Targets are unambiguous here because each non-CANCELED status is
// reachable from exactly one source.
var edgeRoles = map[OrderStatus][]Role{
	StatusAccepted:   {RoleStore},
	StatusRejected:   {RoleStore},
	StatusCooking:    {RoleStore},
	StatusDelivering: {RoleStore},
	StatusCompleted:  {RoleStore},
	StatusCanceled:   {RoleCustomer, RoleStore},
}

// RoleAllowed reports whether role may move an order into the given
// status. Admin may drive any edge.
func RoleAllowed(role Role, to OrderStatus) bool {
	if role == RoleAdmin {
		return true
	}
	for _, allowed := range edgeRoles[to] {
		if allowed == role {
			return true
		}
	}
	return false
}

// InvalidTransitionError carries the statuses involved so transports
// can report both sides of the rejected edge. It matches
// ErrInvalidTransition under errors.Is.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

type Order struct {
	ID        string
	UserID    string
	StoreID   string
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
