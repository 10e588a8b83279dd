package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Product represents a product in the catalog
type Product struct {
	ProductID string `db:"product_id" json:"product_id"`
	Name      string `db:"name" json:"name"`
	Price     int64  `db:"price" json:"price"`
	Stock     int    `db:"stock" json:"stock"`
}

// LineItem is a single cart line or order line. Order items are
// snapshots of cart lines taken at checkout, so both share this shape.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// LineItems is stored as a JSONB column
type LineItems []LineItem

// Value implements driver.Valuer for JSONB storage
func (li LineItems) Value() (driver.Value, error) {
	if li == nil {
		li = LineItems{}
	}
	return json.Marshal(li)
}

// Scan implements sql.Scanner for JSONB storage
func (li *LineItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, li)
	case string:
		return json.Unmarshal([]byte(v), li)
	case nil:
		*li = LineItems{}
		return nil
	default:
		return fmt.Errorf("unsupported type for LineItems: %T", src)
	}
}

// Merge adds an incoming line to the cart. A line for a product already
// in the cart sums quantities rather than replacing the existing line.
func (li LineItems) Merge(item LineItem) LineItems {
	for i := range li {
		if li[i].ProductID == item.ProductID {
			li[i].Quantity += item.Quantity
			return li
		}
	}
	return append(li, item)
}

// Order represents a customer order
type Order struct {
	OrderID    int64     `db:"order_id" json:"order_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Items      LineItems `db:"items" json:"items"`
	TotalPrice int64     `db:"total_price" json:"total_price"`
	Status     Status    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// OrderSummary is the denormalized {order_id, total_price} entry kept on
// the owning user, appended at checkout and removed when an admin deletes
// the order.
type OrderSummary struct {
	OrderID    int64 `json:"order_id"`
	TotalPrice int64 `json:"total_price"`
}

// OrderSummaries is stored as a JSONB column
type OrderSummaries []OrderSummary

func (os OrderSummaries) Value() (driver.Value, error) {
	if os == nil {
		os = OrderSummaries{}
	}
	return json.Marshal(os)
}

func (os *OrderSummaries) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, os)
	case string:
		return json.Unmarshal([]byte(v), os)
	case nil:
		*os = OrderSummaries{}
		return nil
	default:
		return fmt.Errorf("unsupported type for OrderSummaries: %T", src)
	}
}

// Role distinguishes ordinary customers from administrators
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Admin reports whether the role carries administrative capabilities
func (r Role) Admin() bool {
	return r == RoleAdmin
}

// User represents an account with its cart and order summaries
type User struct {
	UserID   string         `db:"user_id" json:"user_id"`
	FullName string         `db:"full_name" json:"full_name"`
	Email    string         `db:"email" json:"email"`
	Password string         `db:"password" json:"-"`
	Role     Role           `db:"role" json:"role"`
	Token    string         `db:"token" json:"-"`
	Cart     LineItems      `db:"cart" json:"cart"`
	Orders   OrderSummaries `db:"orders" json:"orders"`
}

// CreditCard is the payment instrument presented at checkout
type CreditCard struct {
	Name             string `json:"name" binding:"required"`
	CreditCardNumber string `json:"credit_card_number" binding:"required"`
	ExpiryDate       string `json:"expiry_date" binding:"required"`
	CVV              string `json:"cvv" binding:"required"`
}

// Expired reports whether the card's MM/YY expiry falls before now,
// compared at month granularity.
func (c CreditCard) Expired(now time.Time) (bool, error) {
	expiry, err := time.Parse("01/06", c.ExpiryDate)
	if err != nil {
		return false, fmt.Errorf("invalid expiry date %q: %w", c.ExpiryDate, err)
	}
	if expiry.Year() != now.Year() {
		return expiry.Year() < now.Year(), nil
	}
	return expiry.Month() < now.Month(), nil
}

// StockDeduction is one pre-validated decrement in a checkout batch
type StockDeduction struct {
	ProductID string
	Quantity  int
}

// CheckoutOutcome enumerates the expected, non-fatal results of checkout
type CheckoutOutcome string

const (
	OutcomeSuccess         CheckoutOutcome = "success"
	OutcomeCardExpired     CheckoutOutcome = "card_expired"
	OutcomePaymentDeclined CheckoutOutcome = "payment_declined"
	OutcomeOutOfStock      CheckoutOutcome = "out_of_stock"
)

// CheckoutResult reports the definite outcome of a checkout attempt.
// Only OutcomeSuccess carries an order; the other outcomes leave all
// state untouched.
type CheckoutResult struct {
	Outcome    CheckoutOutcome `json:"outcome"`
	OrderID    int64           `json:"order_id,omitempty"`
	TotalPrice int64           `json:"total_price,omitempty"`
	Items      LineItems       `json:"items,omitempty"`
	OutOfStock []string        `json:"out_of_stock,omitempty"`
	Email      string          `json:"email,omitempty"`
}
