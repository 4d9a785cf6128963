package port

import (
	"context"

	"github.com/baedalgo/delivery/internal/core/domain"
)

type UserDirectory interface {
	// GetRole resolves the role of the acting user,
	// domain.ErrUserNotFound when the user is unknown.
	GetRole(ctx context.Context, userID string) (domain.Role, error)
}
