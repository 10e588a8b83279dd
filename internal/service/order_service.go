package service

import (
	"context"
	"fmt"
	"time"

	"oms-api/internal/models"
	"oms-api/internal/store"
	"oms-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService drives the order status machine and the administrative
// order operations.
type OrderService struct {
	orders    OrderStore
	users     UserStore
	ledger    *InventoryLedger
	clock     Clock
	notifier  Notifier
	publisher EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates an order service
func NewOrderService(
	orders OrderStore,
	users UserStore,
	ledger *InventoryLedger,
	clock Clock,
	notifier Notifier,
	publisher EventPublisher,
) *OrderService {
	return &OrderService{
		orders:    orders,
		users:     users,
		ledger:    ledger,
		clock:     clock,
		notifier:  notifier,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Transition advances an order to the requested status. Transitions are
// strictly linear; the shipment transition additionally decrements
// stock for every line item, all-or-nothing. The status is only
// persisted after the inventory effect has succeeded.
func (s *OrderService) Transition(ctx context.Context, orderID int64, requested models.Status) (*models.Order, string, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Transition")
	defer span.End()

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}

	next, ok := order.Status.Next()
	if !ok {
		util.StatusTransitionsRejected.WithLabelValues("terminal").Inc()
		return nil, "", fmt.Errorf("%w: order is already %s and cannot be updated",
			ErrInvalidTransition, order.Status)
	}
	if requested != next {
		util.StatusTransitionsRejected.WithLabelValues("non_linear").Inc()
		return nil, "", fmt.Errorf("%w: %s -> %s, valid next status is %s",
			ErrInvalidTransition, order.Status, requested, next)
	}

	if requested == models.StatusShipped {
		if err := s.decrementForShipment(ctx, order); err != nil {
			return nil, "", err
		}
	}

	now := s.clock.Now()
	if err := s.orders.UpdateOrderStatus(ctx, orderID, requested, now); err != nil {
		return nil, "", err
	}
	oldStatus := order.Status
	order.Status = requested
	order.UpdatedAt = now

	util.StatusTransitionsTotal.WithLabelValues(string(requested)).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(requested)))

	ack := s.notifyStatusChange(ctx, order)

	if s.publisher != nil {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderStatusChanged,
				Timestamp: now,
			},
			OrderID:   orderID,
			UserID:    order.UserID,
			OldStatus: oldStatus,
			NewStatus: requested,
		}
		if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
		}
	}

	return order, ack, nil
}

// decrementForShipment pre-checks every line against current stock
// before committing any decrement, mirroring the checkout policy: a
// single short line fails the whole transition with nothing applied.
func (s *OrderService) decrementForShipment(ctx context.Context, order *models.Order) error {
	deductions := make([]models.StockDeduction, 0, len(order.Items))
	for _, item := range order.Items {
		stock, err := s.ledger.GetStock(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if item.Quantity > stock {
			util.StatusTransitionsRejected.WithLabelValues("insufficient_stock").Inc()
			return fmt.Errorf("%w: not enough stock for product %s",
				store.ErrInsufficientStock, item.Name)
		}
		deductions = append(deductions, models.StockDeduction{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return s.ledger.DecrementBatch(ctx, deductions)
}

func (s *OrderService) notifyStatusChange(ctx context.Context, order *models.Order) string {
	user, err := s.users.GetUserByID(ctx, order.UserID)
	if err != nil {
		s.logger.Warn("Owner lookup failed, skipping notification",
			zap.Int64("order_id", order.OrderID),
			zap.Error(err))
		return ""
	}

	var message string
	switch order.Status {
	case models.StatusProcessing:
		message = fmt.Sprintf("Dear %s, your order #%d is now being processed.", user.FullName, order.OrderID)
	case models.StatusShipped:
		message = fmt.Sprintf("Dear %s, your order #%d has been shipped.", user.FullName, order.OrderID)
	case models.StatusDelivered:
		message = fmt.Sprintf("Dear %s, your order #%d has been delivered.", user.FullName, order.OrderID)
	default:
		return ""
	}
	return s.notifier.Send(user.Email, message)
}

// GetOrder retrieves an order by id
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return s.orders.GetOrderByID(ctx, orderID)
}

// ListOrders retrieves every order
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.GetAllOrders(ctx)
}

// ListOrdersByStatus retrieves orders by status, optionally bounded by
// a created_at range.
func (s *OrderService) ListOrdersByStatus(ctx context.Context, status models.Status, from, to *time.Time) ([]models.Order, error) {
	return s.orders.GetOrdersByStatus(ctx, status, from, to)
}

// Delete removes an order. Only Pending orders may be deleted; deletion
// also removes the summary entry from the owning user and sends a
// refund notice.
func (s *OrderService) Delete(ctx context.Context, orderID int64) (string, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Delete")
	defer span.End()

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.Status != models.StatusPending {
		return "", fmt.Errorf("%w: order %d is %s", ErrOrderNotPending, orderID, order.Status)
	}

	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		return "", err
	}
	if err := s.users.RemoveOrderSummary(ctx, orderID); err != nil {
		return "", err
	}

	util.OrdersDeletedTotal.Inc()
	s.logger.Info("Order deleted", zap.Int64("order_id", orderID))

	ack := s.sendRefundNotice(ctx, order)
	s.publishDeleted(ctx, order)

	return ack, nil
}

// DeleteAll removes every order, clears all user summaries and sends a
// refund notice per deleted order. Returns the concatenated
// acknowledgements and the number of orders removed.
func (s *OrderService) DeleteAll(ctx context.Context) (string, int64, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteAll")
	defer span.End()

	orders, err := s.orders.GetAllOrders(ctx)
	if err != nil {
		return "", 0, err
	}
	if len(orders) == 0 {
		return "", 0, nil
	}

	deleted, err := s.orders.DeleteAllOrders(ctx)
	if err != nil {
		return "", 0, err
	}
	if err := s.users.ClearAllOrderSummaries(ctx); err != nil {
		return "", 0, err
	}

	var acks string
	for i := range orders {
		acks += s.sendRefundNotice(ctx, &orders[i])
		s.publishDeleted(ctx, &orders[i])
		util.OrdersDeletedTotal.Inc()
	}

	s.logger.Info("All orders deleted", zap.Int64("count", deleted))
	return acks, deleted, nil
}

func (s *OrderService) sendRefundNotice(ctx context.Context, order *models.Order) string {
	user, err := s.users.GetUserByID(ctx, order.UserID)
	if err != nil {
		s.logger.Warn("Owner lookup failed, skipping refund notice",
			zap.Int64("order_id", order.OrderID),
			zap.Error(err))
		return ""
	}
	message := fmt.Sprintf(
		"Dear %s,\n\nYour order %d has been deleted as requested.\nThe total amount of $%d will be refunded.\n\nThank you for shopping with us.",
		user.FullName, order.OrderID, order.TotalPrice)
	return s.notifier.Send(user.Email, message)
}

func (s *OrderService) publishDeleted(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := &models.OrderDeletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderDeleted,
			Timestamp: s.clock.Now(),
		},
		OrderID:    order.OrderID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
	}
	if err := s.publisher.PublishOrderDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderDeleted event", zap.Error(err))
	}
}
