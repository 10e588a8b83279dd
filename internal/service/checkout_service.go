package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"oms-api/internal/models"
	"oms-api/internal/store"
	"oms-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService converts a cart into a persisted order with inventory
// effects. Steps run in a fixed order; everything before the stock
// decrement is pure validation, so a failed attempt consumes nothing
// and can be retried safely.
type CheckoutService struct {
	users     UserStore
	orders    OrderStore
	products  ProductStore
	ledger    *InventoryLedger
	seq       SequenceAllocator
	clock     Clock
	decider   Decider
	notifier  Notifier
	publisher EventPublisher
	logger    *zap.Logger
}

// NewCheckoutService creates a checkout service
func NewCheckoutService(
	users UserStore,
	orders OrderStore,
	products ProductStore,
	ledger *InventoryLedger,
	seq SequenceAllocator,
	clock Clock,
	decider Decider,
	notifier Notifier,
	publisher EventPublisher,
) *CheckoutService {
	return &CheckoutService{
		users:     users,
		orders:    orders,
		products:  products,
		ledger:    ledger,
		seq:       seq,
		clock:     clock,
		decider:   decider,
		notifier:  notifier,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Checkout validates the payment instrument and cart, simulates the
// payment, applies stock decrements all-or-nothing, allocates an order
// id and persists the order. Business failures (expired card, declined
// payment, out of stock) are reported as outcomes, not errors; only
// client errors and storage failures return a non-nil error.
func (s *CheckoutService) Checkout(ctx context.Context, userID string, card models.CreditCard) (*models.CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	util.CheckoutAttemptsTotal.Inc()
	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	expired, err := card.Expired(now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCard, err)
	}
	if expired {
		util.CheckoutOutcomesTotal.WithLabelValues(string(models.OutcomeCardExpired)).Inc()
		ack := s.notifier.Send(user.Email,
			fmt.Sprintf("Dear %s, your card has expired. Please use a valid card.", user.FullName))
		return &models.CheckoutResult{Outcome: models.OutcomeCardExpired, Email: ack}, nil
	}

	if len(user.Cart) == 0 {
		return nil, ErrEmptyCart
	}

	if !s.decider.Decide() {
		util.CheckoutOutcomesTotal.WithLabelValues(string(models.OutcomePaymentDeclined)).Inc()
		ack := s.notifier.Send(user.Email,
			fmt.Sprintf("Dear %s, your card was declined. Please check with your bank if you have a balance.", user.FullName))
		return &models.CheckoutResult{Outcome: models.OutcomePaymentDeclined, Email: ack}, nil
	}

	// Pre-validate every line before touching any stock. Lines whose
	// product no longer exists are dropped silently; lines short on
	// stock fail the whole checkout.
	var (
		outOfStock []string
		items      models.LineItems
		deductions []models.StockDeduction
		total      int64
	)
	for _, line := range user.Cart {
		product, err := s.products.GetProduct(ctx, line.ProductID)
		if errors.Is(err, store.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if line.Quantity > product.Stock {
			outOfStock = append(outOfStock, product.Name)
			continue
		}

		total += product.Price * int64(line.Quantity)
		items = append(items, models.LineItem{
			ProductID: product.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
		})
		deductions = append(deductions, models.StockDeduction{
			ProductID: product.ProductID,
			Quantity:  line.Quantity,
		})
	}

	if len(outOfStock) > 0 {
		util.CheckoutOutcomesTotal.WithLabelValues(string(models.OutcomeOutOfStock)).Inc()
		ack := s.notifier.Send(user.Email,
			fmt.Sprintf("Dear %s, sorry - the following items are out of stock: %s. Your card will be refunded.",
				user.FullName, strings.Join(outOfStock, ", ")))
		return &models.CheckoutResult{
			Outcome:    models.OutcomeOutOfStock,
			OutOfStock: outOfStock,
			Email:      ack,
		}, nil
	}

	if err := s.ledger.DecrementBatch(ctx, deductions); err != nil {
		return nil, fmt.Errorf("failed to apply stock decrements: %w", err)
	}

	orderID, err := s.seq.NextOrderID(ctx)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderID:    orderID,
		UserID:     user.UserID,
		Items:      items,
		TotalPrice: total,
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	if err := s.users.UpdateCart(ctx, user.UserID, models.LineItems{}); err != nil {
		return nil, err
	}
	if err := s.users.AppendOrderSummary(ctx, user.UserID, models.OrderSummary{
		OrderID:    orderID,
		TotalPrice: total,
	}); err != nil {
		return nil, err
	}

	util.CheckoutOutcomesTotal.WithLabelValues(string(models.OutcomeSuccess)).Inc()
	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", orderID),
		zap.String("user_id", user.UserID),
		zap.Int64("total_price", total))

	ack := s.notifier.Send(user.Email,
		fmt.Sprintf("Confirmation Email: Dear %s, your order is pending. Total price: $%d. We'll keep you posted on the progress.",
			user.FullName, total))

	if s.publisher != nil {
		event := &models.OrderPlacedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderPlaced,
				Timestamp: now,
			},
			OrderID:    orderID,
			UserID:     user.UserID,
			TotalPrice: total,
			Items:      items,
		}
		if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
		}
	}

	return &models.CheckoutResult{
		Outcome:    models.OutcomeSuccess,
		OrderID:    orderID,
		TotalPrice: total,
		Items:      items,
		Email:      ack,
	}, nil
}
