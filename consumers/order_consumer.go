package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/abm5616/farmcloud/config"
	"github.com/abm5616/farmcloud/models"
	"github.com/abm5616/farmcloud/repository"
)

// StartOrderConsumer consumes the order queue and the dead-letter
// queue. Order mutations triggered here (the deferred payment check)
// go through the repository gateway so lifecycle rules still apply.
func StartOrderConsumer(ch *amqp.Channel, cfg *config.Config, store repository.Gateway) {
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"farmcloud-orders", // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,
	)
	if err != nil {
		slog.Error("failed to register order consumer", "error", err)
		return
	}

	go func() {
		for msg := range msgs {
			processOrderMessage(msg, store)
		}
	}()

	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"farmcloud-orders-dlq",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		slog.Error("failed to register DLQ consumer", "error", err)
		return
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
}

func processOrderMessage(msg amqp.Delivery, store repository.Gateway) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered from panic in message processing", "panic", r)
		}
	}()

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		slog.Error("invalid order event payload", "body", string(msg.Body), "error", err)
		// Reject without requeue so the message dead-letters.
		if err := msg.Nack(false, false); err != nil {
			return
		}
		return
	}

	slog.Info("processing order event",
		"order_id", event.OrderID, "order_number", event.OrderNumber, "type", event.Type)

	switch event.Type {
	case "created":
		handleOrderCreated(event)
	case "status_updated", "payment_updated":
		handleStatusUpdated(event, store)
	case "payment_check":
		handlePaymentCheck(event, store)
	default:
		slog.Warn("unknown order event type", "type", event.Type)
	}

	if err := msg.Ack(false); err != nil {
		return
	}
}

func processDeadLetterMessage(msg amqp.Delivery) {
	slog.Warn("received dead letter", "body", string(msg.Body))
	if err := msg.Ack(false); err != nil {
		return
	}
}

func handleOrderCreated(event models.OrderEvent) {
	// Downstream notification hooks attach here.
	slog.Info("order created", "order_number", event.OrderNumber, "total", event.Total)
}

func handleStatusUpdated(event models.OrderEvent, store repository.Gateway) {
	order, err := store.Get(context.Background(), event.OrderID)
	if err != nil {
		slog.Error("failed to load order for status event", "order_id", event.OrderID, "error", err)
		return
	}

	switch order.Status {
	case models.OrderOutForDelivery:
		// Dispatch notification hook.
	case models.OrderCancelled:
		// Cancellation follow-up hook.
	}
	slog.Info("order status event handled",
		"order_number", order.OrderNumber, "status", order.Status, "payment_status", order.PaymentStatus)
}

// handlePaymentCheck runs when the delayed payment-check message fires:
// orders still PENDING and UNPAID are cancelled through the lifecycle
// rules.
func handlePaymentCheck(event models.OrderEvent, store repository.Gateway) {
	ctx := context.Background()

	order, err := store.Get(ctx, event.OrderID)
	if err != nil {
		slog.Error("failed to load order for payment check", "order_id", event.OrderID, "error", err)
		return
	}
	if order.Status != models.OrderPending || order.PaymentStatus != models.PaymentUnpaid {
		return
	}

	cancelled := models.OrderCancelled
	if _, err := store.UpdateStatus(ctx, order.ID, repository.StatusChange{Status: &cancelled}); err != nil {
		slog.Error("failed to auto-cancel order", "order_number", order.OrderNumber, "error", err)
		return
	}
	slog.Info("auto-cancelled order due to non-payment", "order_number", order.OrderNumber)
}
