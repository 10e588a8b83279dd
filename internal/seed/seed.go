package seed

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"oms-api/internal/auth"
	"oms-api/internal/models"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	product_id TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	price      BIGINT NOT NULL,
	stock      INT NOT NULL CHECK (stock >= 0)
);

CREATE TABLE IF NOT EXISTS users (
	user_id   TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	email     TEXT NOT NULL UNIQUE,
	password  TEXT NOT NULL,
	role      TEXT NOT NULL DEFAULT 'customer',
	token     TEXT NOT NULL,
	cart      JSONB NOT NULL DEFAULT '[]',
	orders    JSONB NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS orders (
	order_id    BIGINT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	items       JSONB NOT NULL,
	total_price BIGINT NOT NULL,
	status      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS order_sequence (
	id         INT PRIMARY KEY,
	last_order BIGINT NOT NULL
);
`

var products = []models.Product{
	{ProductID: "p001", Name: "Laptop", Price: 1200, Stock: 100},
	{ProductID: "p002", Name: "Mouse", Price: 25, Stock: 150},
	{ProductID: "p003", Name: "Keyboard", Price: 60, Stock: 200},
	{ProductID: "p004", Name: "Monitor", Price: 300, Stock: 80},
	{ProductID: "p005", Name: "Headphones", Price: 150, Stock: 120},
	{ProductID: "p006", Name: "Mousepad", Price: 15, Stock: 120},
	{ProductID: "p007", Name: "Disc", Price: 15, Stock: 1},
}

type seedUser struct {
	user     models.User
	password string
}

var users = []seedUser{
	{
		user: models.User{
			UserID:   "u12345",
			FullName: "John Doe",
			Email:    "john.doe@example.com",
			Role:     models.RoleCustomer,
			Cart: models.LineItems{
				{ProductID: "p001", Name: "Laptop", Price: 1200, Quantity: 1},
				{ProductID: "p002", Name: "Mouse", Price: 25, Quantity: 2},
			},
			Orders: models.OrderSummaries{{OrderID: 4, TotalPrice: 1250}},
		},
		password: "John1",
	},
	{
		user: models.User{
			UserID:   "u23456",
			FullName: "Jane Smith",
			Email:    "jane.smith@example.com",
			Role:     models.RoleCustomer,
			Cart:     models.LineItems{},
			Orders: models.OrderSummaries{
				{OrderID: 1, TotalPrice: 150},
				{OrderID: 2, TotalPrice: 360},
				{OrderID: 3, TotalPrice: 150},
			},
		},
		password: "Jane2",
	},
	{
		user: models.User{
			UserID:   "u34567",
			FullName: "Alice Johnson",
			Email:    "alice.johnson@example.com",
			Role:     models.RoleAdmin,
			Cart:     models.LineItems{},
			Orders:   models.OrderSummaries{},
		},
		password: "Admin1",
	},
}

var orders = []models.Order{
	{
		OrderID: 4,
		UserID:  "u12345",
		Items: models.LineItems{
			{ProductID: "p001", Name: "Laptop", Price: 1200, Quantity: 1},
			{ProductID: "p002", Name: "Mouse", Price: 25, Quantity: 2},
		},
		TotalPrice: 1250,
		Status:     models.StatusPending,
		CreatedAt:  time.Date(2025, 2, 19, 12, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 2, 19, 12, 5, 0, 0, time.UTC),
	},
	{
		OrderID: 2,
		UserID:  "u23456",
		Items: models.LineItems{
			{ProductID: "p003", Name: "Keyboard", Price: 60, Quantity: 1},
			{ProductID: "p004", Name: "Monitor", Price: 300, Quantity: 1},
		},
		TotalPrice: 360,
		Status:     models.StatusShipped,
		CreatedAt:  time.Date(2025, 2, 20, 14, 30, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 2, 20, 15, 0, 0, 0, time.UTC),
	},
	{
		OrderID: 1,
		UserID:  "u23456",
		Items: models.LineItems{
			{ProductID: "p005", Name: "Headphones", Price: 150, Quantity: 1},
		},
		TotalPrice: 150,
		Status:     models.StatusDelivered,
		CreatedAt:  time.Date(2025, 2, 21, 9, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 2, 21, 9, 10, 0, 0, time.UTC),
	},
	{
		OrderID: 3,
		UserID:  "u23456",
		Items: models.LineItems{
			{ProductID: "p005", Name: "Headphones", Price: 150, Quantity: 1},
		},
		TotalPrice: 150,
		Status:     models.StatusProcessing,
		CreatedAt:  time.Date(2025, 2, 22, 9, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 2, 22, 9, 10, 0, 0, time.UTC),
	},
}

// Apply creates the schema and resets the database to the demo
// fixtures: seven products, three users (one admin) and four historical
// orders, with the order-id counter at idSeed.
func Apply(ctx context.Context, db *sqlx.DB, issuer *auth.TokenIssuer, idSeed int64) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		"TRUNCATE products, users, orders, order_sequence"); err != nil {
		return fmt.Errorf("failed to reset tables: %w", err)
	}

	for _, p := range products {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO products (product_id, name, price, stock) VALUES ($1, $2, $3, $4)",
			p.ProductID, p.Name, p.Price, p.Stock); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", p.ProductID, err)
		}
	}

	for _, su := range users {
		token, err := issuer.Issue(su.user.UserID, su.user.Email, su.user.Role.Admin())
		if err != nil {
			return fmt.Errorf("failed to issue token for %s: %w", su.user.UserID, err)
		}
		if _, err := db.ExecContext(ctx, `
			INSERT INTO users (user_id, full_name, email, password, role, token, cart, orders)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			su.user.UserID, su.user.FullName, su.user.Email,
			base64.StdEncoding.EncodeToString([]byte(su.password)),
			su.user.Role, token, su.user.Cart, su.user.Orders); err != nil {
			return fmt.Errorf("failed to insert user %s: %w", su.user.UserID, err)
		}
	}

	for _, o := range orders {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO orders (order_id, user_id, items, total_price, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.OrderID, o.UserID, o.Items, o.TotalPrice, o.Status, o.CreatedAt, o.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert order %d: %w", o.OrderID, err)
		}
	}

	if _, err := db.ExecContext(ctx,
		"INSERT INTO order_sequence (id, last_order) VALUES (1, $1)", idSeed); err != nil {
		return fmt.Errorf("failed to seed order sequence: %w", err)
	}

	return nil
}
