package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abm5616/farmcloud/draft"
	"github.com/abm5616/farmcloud/lifecycle"
	"github.com/abm5616/farmcloud/middlewares"
	"github.com/abm5616/farmcloud/models"
	"github.com/abm5616/farmcloud/rabbitmq"
	"github.com/abm5616/farmcloud/repository"
)

// OrderController exposes the order workflow over HTTP. The draft
// builder revalidates and reprices every submitted payload; stored
// totals are never taken from the client.
type OrderController struct {
	store      repository.Gateway
	events     rabbitmq.Publisher
	defaultFee models.Money

	// paymentCheckDelay is how long after creation the deferred
	// payment check fires.
	paymentCheckDelay time.Duration
}

func NewOrderController(store repository.Gateway, events rabbitmq.Publisher, defaultFee models.Money, paymentCheckDelay time.Duration) *OrderController {
	return &OrderController{
		store:             store,
		events:            events,
		defaultFee:        defaultFee,
		paymentCheckDelay: paymentCheckDelay,
	}
}

func orderEvent(order *models.Order, eventType string) models.OrderEvent {
	return models.OrderEvent{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Type:          eventType,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Total:         order.TotalAmount,
		Occurred:      time.Now(),
	}
}

// respondError maps domain errors onto HTTP statuses: validation
// problems are 400, rejected transitions and inconsistent payments are
// 422 with the offending states named, everything else is a 500.
func respondError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	var transitionErr *lifecycle.InvalidTransitionError
	var paymentErr *lifecycle.InconsistentPaymentError

	switch {
	case errors.Is(err, models.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": transitionErr.Error(),
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	case errors.As(err, &paymentErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          paymentErr.Error(),
			"payment_status": paymentErr.Status,
			"amount_paid":    paymentErr.AmountPaid,
			"total_amount":   paymentErr.Total,
		})
	default:
		slog.Error("order operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// CreateOrder validates a submitted draft through the draft builder,
// persists it and schedules the deferred payment check.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("create", ok)
	}()

	var payload models.OrderDraft
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	builder, err := draft.FromDraft(oc.defaultFee, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	validated, err := builder.Build()
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := oc.store.Create(c.Request.Context(), validated)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)

	if oc.events != nil {
		// Large totals jump the queue.
		priority := uint8(5)
		if order.TotalAmount.GreaterThan(models.MustMoney("1000.00")) {
			priority = 9
		}
		if err := oc.events.PublishOrderEvent(orderEvent(order, "created"), priority); err != nil {
			slog.Error("failed to publish order created event", "order_number", order.OrderNumber, "error", err)
		}
		if err := oc.events.PublishDelayedEvent(orderEvent(order, "payment_check"), oc.paymentCheckDelay); err != nil {
			slog.Error("failed to publish delayed payment check", "order_number", order.OrderNumber, "error", err)
		}
	}
}

// GetOrders lists orders, optionally filtered by status, payment
// status, delivery method or customer.
func (oc *OrderController) GetOrders(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("list", ok)
	}()

	filter := models.OrderFilter{
		Status:         models.OrderStatus(c.Query("status")),
		PaymentStatus:  models.PaymentStatus(c.Query("payment_status")),
		DeliveryMethod: models.DeliveryMethod(c.Query("delivery_method")),
	}
	if customer := c.Query("customer"); customer != "" {
		id, err := strconv.ParseInt(customer, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer filter"})
			return
		}
		filter.CustomerID = id
	}

	orders, err := oc.store.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (oc *OrderController) GetOrderDetails(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("details", ok)
	}()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := oc.store.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrder applies a partial update. The repository recomputes
// totals when line items, fee or discount change.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("update", ok)
	}()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var patch models.OrderUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := oc.store.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus is the dedicated partial status contract: the body
// carries either {status} or {payment_status, amount_paid}, never the
// full order. The recomputed order is returned.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("update_status", ok)
	}()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var change repository.StatusChange
	if err := c.ShouldBindJSON(&change); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := oc.store.UpdateStatus(c.Request.Context(), id, change)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)

	if oc.events != nil {
		eventType := "status_updated"
		if change.PaymentStatus != nil {
			eventType = "payment_updated"
		}
		priority := uint8(5)
		if order.Status == models.OrderCancelled {
			priority = 8
		}
		if err := oc.events.PublishOrderEvent(orderEvent(order, eventType), priority); err != nil {
			slog.Error("failed to publish order status event", "order_number", order.OrderNumber, "error", err)
		}
	}
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("delete", ok)
	}()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	if err := oc.store.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted", "order_id": id})
}

// HandleDeadLetter receives dead-lettered order events for operator
// review.
func HandleDeadLetter(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("dead_letter", ok)
	}()

	var deadLetter struct {
		OrderID int64  `json:"order_id"`
		Reason  string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&deadLetter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slog.Warn("handling dead letter", "order_id", deadLetter.OrderID, "reason", deadLetter.Reason)
	c.JSON(http.StatusOK, gin.H{"message": "Dead letter processed"})
}
