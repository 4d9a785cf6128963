package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/baedalgo/delivery/internal/core/domain"
)

// ErrDelivery wraps any transport or auth failure while handing a
// notification to an external channel.
var ErrDelivery = errors.New("notification delivery failed")

// SlackNotifier posts order status messages to a single configured
// channel via chat.postMessage.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

func NewSlackNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
	}
}

func (n *SlackNotifier) Name() string {
	return "slack"
}

func (n *SlackNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	text := fmt.Sprintf("[order %s] %s", msg.OrderID, msg.Text)
	_, _, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("%w: slack post: %w", ErrDelivery, err)
	}
	return nil
}
