package models

import "time"

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeOrderDeleted       = "ORDER_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when a checkout succeeds
type OrderPlacedEvent struct {
	BaseEvent
	OrderID    int64     `json:"order_id"`
	UserID     string    `json:"user_id"`
	TotalPrice int64     `json:"total_price"`
	Items      LineItems `json:"items"`
}

// OrderStatusChangedEvent published when an admin advances an order
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID   int64  `json:"order_id"`
	UserID    string `json:"user_id"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// OrderDeletedEvent published when an admin deletes a pending order
type OrderDeletedEvent struct {
	BaseEvent
	OrderID    int64  `json:"order_id"`
	UserID     string `json:"user_id"`
	TotalPrice int64  `json:"total_price"`
}
