package notify

import "github.com/baedalgo/delivery/internal/core/domain"

// Message maps an order status to the customer-facing notification
// text. Total over the status enumeration: unrecognized values fall
// through to a generic message, never an error.
func Message(status domain.OrderStatus) string {
	switch status {
	case domain.StatusWaiting:
		return "Your order has been received and is awaiting confirmation."
	case domain.StatusAccepted:
		return "Your order has been accepted by the store."
	case domain.StatusCooking:
		return "The store is preparing your order."
	case domain.StatusDelivering:
		return "Your order is out for delivery."
	case domain.StatusCompleted:
		return "Your order has been delivered. Enjoy your meal!"
	case domain.StatusRejected:
		return "Sorry, the store was unable to accept your order."
	case domain.StatusCanceled:
		return "Your order has been canceled."
	default:
		return "Your order status has been updated."
	}
}
