package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-marketplace/internal/broker"
	"photo-marketplace/internal/models"
	"photo-marketplace/internal/redisclient"
	"photo-marketplace/internal/store"
	"photo-marketplace/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService owns the order lifecycle: creation, payment-event driven
// transitions, and reads. It is the sole authority on whether a viewer has
// paid for a photo.
type LedgerService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	lockTTL        time.Duration
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
	lockTTL time.Duration,
) *LedgerService {
	return &LedgerService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		lockTTL:        lockTTL,
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	BuyerID string             `json:"buyer_id" binding:"required"`
	Lines   []OrderLineRequest `json:"lines" binding:"required,min=1"`
}

// OrderLineRequest represents one requested item
type OrderLineRequest struct {
	PhotoID     string `json:"photo_id" binding:"required"`
	ItemType    string `json:"item_type" binding:"required"`
	PrintSpecID string `json:"print_spec_id,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
}

// CreateOrder validates the requested lines against the catalog, recomputes
// the total from catalog prices (client-supplied amounts are never trusted)
// and persists the order in PENDING.
func (s *LedgerService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, []models.OrderLine, error) {
	ctx, span := util.StartSpan(ctx, "LedgerService.CreateOrder")
	defer span.End()

	lines, err := s.buildLines(ctx, req.Lines)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_lines").Inc()
		return nil, nil, err
	}

	var total int64
	for _, line := range lines {
		total += line.Total()
	}

	order := &models.Order{
		ID:          uuid.New().String(),
		BuyerID:     req.BuyerID,
		TotalAmount: total,
		Status:      models.OrderStatusPending,
	}

	if err := s.store.CreateOrder(ctx, order, lines); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("buyer_id", order.BuyerID),
		zap.Int64("total", order.TotalAmount))

	lineData := make([]models.OrderLineData, 0, len(lines))
	for _, line := range lines {
		lineData = append(lineData, models.OrderLineData{
			LineID:      line.ID,
			PhotoID:     line.PhotoID,
			ItemType:    line.ItemType,
			PrintSpecID: line.PrintSpecID,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
	}

	event := &models.OrderCreatedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeOrderCreated),
		OrderID:     order.ID,
		BuyerID:     order.BuyerID,
		TotalAmount: order.TotalAmount,
		Lines:       lineData,
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, lines, nil
}

// buildLines resolves each requested line against the catalog and prices it.
func (s *LedgerService) buildLines(ctx context.Context, reqs []OrderLineRequest) ([]models.OrderLine, error) {
	lines := make([]models.OrderLine, 0, len(reqs))

	for _, req := range reqs {
		photo, err := s.store.GetPhotoByID(ctx, req.PhotoID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("photo %s: %w", req.PhotoID, models.ErrValidation)
			}
			return nil, err
		}
		if !photo.IsActive {
			return nil, fmt.Errorf("photo %s is not for sale: %w", req.PhotoID, models.ErrValidation)
		}

		line := models.OrderLine{
			ID:                uuid.New().String(),
			PhotoID:           req.PhotoID,
			ItemType:          req.ItemType,
			FulfillmentStatus: models.FulfillmentNone,
		}

		switch req.ItemType {
		case models.LineTypeDigital:
			// Digital licenses are always quantity one.
			line.Quantity = 1
			line.UnitPrice = photo.DigitalPrice

		case models.LineTypePrint:
			if req.PrintSpecID == "" {
				return nil, fmt.Errorf("print line needs a print spec: %w", models.ErrValidation)
			}
			spec, err := s.store.GetPrintSpecByID(ctx, req.PrintSpecID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return nil, fmt.Errorf("print spec %s: %w", req.PrintSpecID, models.ErrValidation)
				}
				return nil, err
			}
			if !spec.IsActive {
				return nil, fmt.Errorf("print spec %s is not orderable: %w", req.PrintSpecID, models.ErrValidation)
			}
			if req.Quantity < 1 {
				return nil, fmt.Errorf("print quantity must be at least 1: %w", models.ErrValidation)
			}
			line.PrintSpecID = spec.ID
			line.Quantity = req.Quantity
			line.UnitPrice = spec.Price

		default:
			return nil, fmt.Errorf("unknown item type %q: %w", req.ItemType, models.ErrValidation)
		}

		lines = append(lines, line)
	}

	return lines, nil
}

// ApplyPaymentEvent applies a gateway webhook to its order. A Redis
// per-order lock gates concurrent deliveries up front; the database row lock
// inside the store remains authoritative, so a Redis outage only costs the
// fast path. Replays and stale sequence numbers are dropped, not failed.
func (s *LedgerService) ApplyPaymentEvent(ctx context.Context, ev *models.PaymentEvent) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "LedgerService.ApplyPaymentEvent")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PaymentEventLatency.Observe(time.Since(start).Seconds())
	}()

	if err := validatePaymentEvent(ev); err != nil {
		return nil, err
	}
	util.PaymentEventsTotal.WithLabelValues(ev.Status).Inc()

	var cached models.Order
	hit, err := s.redis.GetCachedWebhookResult(ctx, ev.IdempotencyKey, &cached)
	if err != nil {
		s.logger.Warn("Webhook cache lookup failed", zap.Error(err))
	}
	if hit {
		util.PaymentEventsDroppedTotal.WithLabelValues("replay").Inc()
		s.logger.Info("Duplicate webhook short-circuited",
			zap.String("idempotency_key", ev.IdempotencyKey),
			zap.String("order_id", cached.ID))
		return &cached, nil
	}

	token, ok, err := s.redis.AcquireOrderLock(ctx, ev.OrderID, s.lockTTL)
	if err != nil {
		s.logger.Warn("Order lock unavailable, relying on row lock", zap.Error(err))
	} else if !ok {
		// Another delivery for this order is in flight; the gateway will
		// retry with the same idempotency key.
		return nil, fmt.Errorf("order %s is being updated: %w", ev.OrderID, models.ErrUnavailable)
	} else {
		defer func() {
			if err := s.redis.ReleaseOrderLock(context.Background(), ev.OrderID, token); err != nil {
				s.logger.Warn("Failed to release order lock", zap.Error(err))
			}
		}()
	}

	before, err := s.store.GetOrderByID(ctx, ev.OrderID)
	if err != nil {
		return nil, err
	}

	order, err := s.store.ApplyPaymentEvent(ctx, ev)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			util.PaymentEventsDroppedTotal.WithLabelValues("stale_or_terminal").Inc()
			s.logger.Info("Payment event dropped",
				zap.String("order_id", ev.OrderID),
				zap.String("idempotency_key", ev.IdempotencyKey),
				zap.String("reason", err.Error()))
		}
		return nil, err
	}

	if err := s.redis.CacheWebhookResult(ctx, ev.IdempotencyKey, order, time.Hour); err != nil {
		s.logger.Warn("Failed to cache webhook result", zap.Error(err))
	}

	if order.Status != before.Status {
		s.recordTransition(ctx, order)
	}

	return order, nil
}

func validatePaymentEvent(ev *models.PaymentEvent) error {
	if ev.OrderID == "" || ev.IdempotencyKey == "" {
		return fmt.Errorf("webhook missing order id or idempotency key: %w", models.ErrValidation)
	}
	if ev.SequenceNumber < 1 {
		return fmt.Errorf("webhook sequence number must be positive: %w", models.ErrValidation)
	}
	switch ev.Status {
	case models.PaymentStatusPaid, models.PaymentStatusRefunded, models.PaymentStatusCancelled:
		return nil
	}
	return fmt.Errorf("unknown payment status %q: %w", ev.Status, models.ErrValidation)
}

// recordTransition bumps metrics and publishes the lifecycle event for a
// status change that was just committed.
func (s *LedgerService) recordTransition(ctx context.Context, order *models.Order) {
	switch order.Status {
	case models.OrderStatusFulfilled:
		util.OrdersFulfilledTotal.Inc()
		event := &models.OrderFulfilledEvent{
			BaseEvent:  newBaseEvent(models.EventTypeOrderFulfilled),
			OrderID:    order.ID,
			BuyerID:    order.BuyerID,
			Amount:     order.TotalAmount,
			PaymentRef: order.PaymentRef,
		}
		if err := s.eventPublisher.PublishOrderFulfilled(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderFulfilled event", zap.Error(err))
		}

	case models.OrderStatusRefunded:
		util.OrdersRefundedTotal.Inc()
		event := &models.OrderRefundedEvent{
			BaseEvent:  newBaseEvent(models.EventTypeOrderRefunded),
			OrderID:    order.ID,
			BuyerID:    order.BuyerID,
			PaymentRef: order.PaymentRef,
		}
		if err := s.eventPublisher.PublishOrderRefunded(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderRefunded event", zap.Error(err))
		}

	case models.OrderStatusCancelled:
		util.OrdersCancelledTotal.Inc()
		event := &models.OrderCancelledEvent{
			BaseEvent: newBaseEvent(models.EventTypeOrderCancelled),
			OrderID:   order.ID,
			Reason:    "payment_cancelled",
		}
		if err := s.eventPublisher.PublishOrderCancelled(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
		}
	}

	s.logger.Info("Order transitioned",
		zap.String("order_id", order.ID),
		zap.String("status", order.Status),
		zap.Int64("seq", order.LastEventSeq))
}

// GetOrder retrieves an order and its lines
func (s *LedgerService) GetOrder(ctx context.Context, orderID string) (*models.Order, []models.OrderLine, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	lines, err := s.store.GetOrderLinesByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, lines, nil
}

// LinesForPhoto returns a buyer's purchase lines for one photo with parent
// order status attached.
func (s *LedgerService) LinesForPhoto(ctx context.Context, buyerID, photoID string) ([]models.PurchasedLine, error) {
	return s.store.LinesForPhoto(ctx, buyerID, photoID)
}

// GetPhoto retrieves a catalog photo
func (s *LedgerService) GetPhoto(ctx context.Context, photoID string) (*models.Photo, error) {
	return s.store.GetPhotoByID(ctx, photoID)
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
