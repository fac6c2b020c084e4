package models

import "time"

// Event types
const (
	EventTypeOrderCreated      = "ORDER_CREATED"
	EventTypeOrderFulfilled    = "ORDER_FULFILLED"
	EventTypeOrderRefunded     = "ORDER_REFUNDED"
	EventTypeOrderCancelled    = "ORDER_CANCELLED"
	EventTypePayoutComputed    = "PAYOUT_COMPUTED"
	EventTypePrintJobDispatch  = "PRINT_JOB_DISPATCHED"
	EventTypePrintJobFailed    = "PRINT_JOB_FAILED"
	EventTypePrintJobCompleted = "PRINT_JOB_COMPLETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order is created in PENDING
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     string          `json:"order_id"`
	BuyerID     string          `json:"buyer_id"`
	TotalAmount int64           `json:"total_amount"`
	Lines       []OrderLineData `json:"lines"`
}

// OrderFulfilledEvent published when a paid webhook fulfills an order
type OrderFulfilledEvent struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	BuyerID    string `json:"buyer_id"`
	Amount     int64  `json:"amount"`
	PaymentRef string `json:"payment_ref"`
}

// OrderRefundedEvent published when an order is refunded; downstream
// consumers (fulfillment, payouts) react to the reversal
type OrderRefundedEvent struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	BuyerID    string `json:"buyer_id"`
	PaymentRef string `json:"payment_ref"`
}

// OrderCancelledEvent published when a pending order is cancelled
type OrderCancelledEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// PayoutComputedEvent published for each payout record the calculator creates
type PayoutComputedEvent struct {
	BaseEvent
	PayoutID       string `json:"payout_id"`
	PhotographerID string `json:"photographer_id"`
	Amount         int64  `json:"amount"`
	LineCount      int    `json:"line_count"`
}

// PrintJobDispatchedEvent published when a print line is handed to the
// fulfillment partner
type PrintJobDispatchedEvent struct {
	BaseEvent
	OrderID     string `json:"order_id"`
	LineID      string `json:"line_id"`
	PhotoID     string `json:"photo_id"`
	PrintSpecID string `json:"print_spec_id"`
	Quantity    int    `json:"quantity"`
}

// PrintJobStatusEvent reported asynchronously by the fulfillment partner
// for both failure and completion
type PrintJobStatusEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	LineID  string `json:"line_id"`
	Reason  string `json:"reason,omitempty"`
}

// OrderLineData represents line data in events
type OrderLineData struct {
	LineID      string `json:"line_id"`
	PhotoID     string `json:"photo_id"`
	ItemType    string `json:"item_type"`
	PrintSpecID string `json:"print_spec_id,omitempty"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}
