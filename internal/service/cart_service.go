package service

import (
	"context"
	"fmt"

	"oms-api/internal/models"
	"oms-api/internal/util"

	"go.uber.org/zap"
)

// CartUpdate is one incoming cart line from the client
type CartUpdate struct {
	ProductID string `json:"product_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// CartService manages per-user carts. Carts are single-writer under
// normal operation, so updates are plain read-modify-write.
type CartService struct {
	users    UserStore
	products ProductStore
	logger   *zap.Logger
}

// NewCartService creates a cart service
func NewCartService(users UserStore, products ProductStore) *CartService {
	return &CartService{
		users:    users,
		products: products,
		logger:   util.GetLogger(),
	}
}

// GetCart returns a user's cart
func (s *CartService) GetCart(ctx context.Context, userID string) (models.LineItems, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Cart, nil
}

// UpdateCart validates and merges incoming lines into the user's cart.
// Quantities are bounded 1..10, prices are snapshotted from the
// catalog, and a line for a product already in the cart sums
// quantities.
func (s *CartService) UpdateCart(ctx context.Context, userID string, updates []CartUpdate) (models.LineItems, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart := user.Cart
	for _, update := range updates {
		product, err := s.products.GetProduct(ctx, update.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Name != update.Name {
			return nil, fmt.Errorf("%w: %s", ErrNameMismatch, update.Name)
		}
		if update.Quantity <= 0 || update.Quantity > 10 {
			return nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, update.ProductID)
		}

		cart = cart.Merge(models.LineItem{
			ProductID: product.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  update.Quantity,
		})
	}

	if err := s.users.UpdateCart(ctx, userID, cart); err != nil {
		return nil, err
	}

	s.logger.Info("Cart updated",
		zap.String("user_id", userID),
		zap.Int("lines", len(cart)))
	return cart, nil
}

// ClearCart empties a user's cart
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	return s.users.UpdateCart(ctx, userID, models.LineItems{})
}
