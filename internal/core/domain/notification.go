package domain

// Notification is the ephemeral message produced after a committed
// status change and handed to the configured sinks. It is never
// persisted.
type Notification struct {
	OrderID string
	UserID  string
	Status  OrderStatus
	Text    string
}
