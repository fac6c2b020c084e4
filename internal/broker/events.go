package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"photo-marketplace/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing ledger and fulfillment domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderFulfilled publishes OrderFulfilled event
func (ep *EventPublisher) PublishOrderFulfilled(ctx context.Context, event *models.OrderFulfilledEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderRefunded publishes OrderRefunded event
func (ep *EventPublisher) PublishOrderRefunded(ctx context.Context, event *models.OrderRefundedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderCancelled publishes OrderCancelled event
func (ep *EventPublisher) PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishPayoutComputed publishes PayoutComputed event
func (ep *EventPublisher) PublishPayoutComputed(ctx context.Context, event *models.PayoutComputedEvent) error {
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("payout-%s", event.PayoutID), event)
}

// PublishPrintJobDispatched publishes PrintJobDispatched event
func (ep *EventPublisher) PublishPrintJobDispatched(ctx context.Context, event *models.PrintJobDispatchedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

func orderKey(orderID string) string {
	return fmt.Sprintf("order-%s", orderID)
}

// EventHandler routes consumed messages to registered handlers
type EventHandler struct {
	onOrderFulfilled    func(context.Context, *models.OrderFulfilledEvent) error
	onOrderRefunded     func(context.Context, *models.OrderRefundedEvent) error
	onPrintJobFailed    func(context.Context, *models.PrintJobStatusEvent) error
	onPrintJobCompleted func(context.Context, *models.PrintJobStatusEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderFulfilled registers a handler for OrderFulfilled events
func (eh *EventHandler) OnOrderFulfilled(handler func(context.Context, *models.OrderFulfilledEvent) error) {
	eh.onOrderFulfilled = handler
}

// OnOrderRefunded registers a handler for OrderRefunded events
func (eh *EventHandler) OnOrderRefunded(handler func(context.Context, *models.OrderRefundedEvent) error) {
	eh.onOrderRefunded = handler
}

// OnPrintJobFailed registers a handler for PrintJobFailed events
func (eh *EventHandler) OnPrintJobFailed(handler func(context.Context, *models.PrintJobStatusEvent) error) {
	eh.onPrintJobFailed = handler
}

// OnPrintJobCompleted registers a handler for PrintJobCompleted events
func (eh *EventHandler) OnPrintJobCompleted(handler func(context.Context, *models.PrintJobStatusEvent) error) {
	eh.onPrintJobCompleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeOrderFulfilled:
		if eh.onOrderFulfilled != nil {
			var event models.OrderFulfilledEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderFulfilled event: %w", err)
			}
			return eh.onOrderFulfilled(ctx, &event)
		}

	case models.EventTypeOrderRefunded:
		if eh.onOrderRefunded != nil {
			var event models.OrderRefundedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderRefunded event: %w", err)
			}
			return eh.onOrderRefunded(ctx, &event)
		}

	case models.EventTypePrintJobFailed:
		if eh.onPrintJobFailed != nil {
			var event models.PrintJobStatusEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PrintJobFailed event: %w", err)
			}
			return eh.onPrintJobFailed(ctx, &event)
		}

	case models.EventTypePrintJobCompleted:
		if eh.onPrintJobCompleted != nil {
			var event models.PrintJobStatusEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PrintJobCompleted event: %w", err)
			}
			return eh.onPrintJobCompleted(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
