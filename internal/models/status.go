package models

// Status is an order lifecycle state. Transitions are strictly linear:
// Pending -> Processing -> Shipped -> Delivered, with Delivered terminal.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
)

var nextStatus = map[Status]Status{
	StatusPending:    StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

// Next returns the single legal successor of s. ok is false when s is
// terminal or unknown.
func (s Status) Next() (Status, bool) {
	next, ok := nextStatus[s]
	return next, ok
}

// Terminal reports whether no further transitions are allowed from s
func (s Status) Terminal() bool {
	_, ok := nextStatus[s]
	return !ok
}

// ParseStatus validates a status supplied by a client
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered:
		return Status(raw), true
	}
	return "", false
}
