package port

import (
	"context"

	"github.com/baedalgo/delivery/internal/core/domain"
)

type Notifier interface {
	// Notify delivers one notification to an external channel.
	// Best-effort: implementations wrap transport failures in
	// notifier.ErrDelivery and callers log without retrying.
	Notify(ctx context.Context, n domain.Notification) error

	// Name identifies the sink in logs and metrics.
	Name() string
}
