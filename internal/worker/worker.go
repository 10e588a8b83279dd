package worker

import (
	"context"
	"log"

	"oms-api/internal/broker"
	"oms-api/internal/models"
	"oms-api/internal/util"

	"go.uber.org/zap"
)

// AuditWorker consumes order lifecycle events and records them as a
// structured audit trail. It is the only consumer of the order topic
// inside this service; downstream systems attach their own groups.
type AuditWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(consumer *broker.Consumer) *AuditWorker {
	w := &AuditWorker{
		consumer: consumer,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	eventHandler.OnOrderDeleted(w.handleOrderDeleted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	log.Println("Starting audit worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	log.Println("Stopping audit worker...")
	return w.consumer.Close()
}

func (w *AuditWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	w.logger.Info("Order placed",
		zap.String("event_id", event.EventID),
		zap.Int64("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.Int64("total_price", event.TotalPrice),
		zap.Int("lines", len(event.Items)))
	return nil
}

func (w *AuditWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	w.logger.Info("Order status changed",
		zap.String("event_id", event.EventID),
		zap.Int64("order_id", event.OrderID),
		zap.String("from", string(event.OldStatus)),
		zap.String("to", string(event.NewStatus)))
	return nil
}

func (w *AuditWorker) handleOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error {
	w.logger.Info("Order deleted",
		zap.String("event_id", event.EventID),
		zap.Int64("order_id", event.OrderID),
		zap.Int64("total_price", event.TotalPrice))
	return nil
}
