package models

import "time"

// Photo represents a creative work uploaded by a photographer.
// Photos are soft-deactivated, never hard-deleted while an order line
// references them.
type Photo struct {
	ID             string    `db:"id" json:"id"`
	PhotographerID string    `db:"photographer_id" json:"photographer_id"`
	Title          string    `db:"title" json:"title"`
	Location       string    `db:"location" json:"location"`
	ImageURL       string    `db:"image_url" json:"image_url,omitempty"`
	ThumbnailURL   string    `db:"thumbnail_url" json:"thumbnail_url"`
	DigitalPrice   int64     `db:"digital_price" json:"digital_price"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	IsFeatured     bool      `db:"is_featured" json:"is_featured"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// PrintSpec is a catalog entry for a physical print option. Read-only here;
// maintained by the admin tooling.
type PrintSpec struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Medium       string    `db:"medium" json:"medium"`
	WidthInches  int       `db:"width_inches" json:"width_inches"`
	HeightInches int       `db:"height_inches" json:"height_inches"`
	Price        int64     `db:"price" json:"price"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Print media
const (
	PrintMediumMattePaper = "matte_paper"
	PrintMediumCanvas     = "canvas"
	PrintMediumMetal      = "metal"
	PrintMediumAcrylic    = "acrylic"
)

// Role is the closed set of viewer roles supplied by the identity provider.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleCreator  Role = "creator"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleConsumer, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

// Viewer is the request-scoped identity every access decision is made for.
// It is never persisted; the identity provider supplies it per request and
// we trust it verbatim. An anonymous viewer has an empty UserID.
type Viewer struct {
	UserID string `json:"user_id,omitempty"`
	Role   Role   `json:"role"`
}

// Anonymous reports whether the viewer has no authenticated identity.
func (v Viewer) Anonymous() bool {
	return v.UserID == ""
}

// AccessLevel is the outcome of entitlement resolution for a (viewer, photo)
// pair.
type AccessLevel string

const (
	AccessNone           AccessLevel = "no-access"
	AccessPreviewOnly    AccessLevel = "preview-only"
	AccessFullResolution AccessLevel = "full-resolution"
	AccessPrintReady     AccessLevel = "print-ready"
)

// GrantsSource reports whether the level permits delivery of original bytes.
func (a AccessLevel) GrantsSource() bool {
	return a == AccessFullResolution || a == AccessPrintReady
}

// Order represents one purchase transaction.
type Order struct {
	ID           string    `db:"id" json:"id"`
	BuyerID      string    `db:"buyer_id" json:"buyer_id"`
	TotalAmount  int64     `db:"total_amount" json:"total_amount"`
	Status       string    `db:"status" json:"status"`
	PaymentRef   string    `db:"payment_ref" json:"payment_ref,omitempty"`
	LastEventSeq int64     `db:"last_event_seq" json:"last_event_seq"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Order statuses
const (
	OrderStatusPending   = "PENDING"
	OrderStatusFulfilled = "FULFILLED"
	OrderStatusRefunded  = "REFUNDED"
	OrderStatusCancelled = "CANCELLED"
)

// Terminal reports whether status admits no further payment transitions.
func Terminal(status string) bool {
	return status == OrderStatusRefunded || status == OrderStatusCancelled
}

// NextOrderStatus computes the transition an incoming payment event status
// produces from the order's current status. It returns ErrConflict when the
// transition is not allowed; callers drop such events.
func NextOrderStatus(current, eventStatus string) (string, error) {
	switch eventStatus {
	case PaymentStatusPaid:
		if current == OrderStatusPending {
			return OrderStatusFulfilled, nil
		}
	case PaymentStatusRefunded:
		if !Terminal(current) {
			return OrderStatusRefunded, nil
		}
	case PaymentStatusCancelled:
		if current == OrderStatusPending {
			return OrderStatusCancelled, nil
		}
	default:
		return "", ErrValidation
	}
	return "", ErrConflict
}

// OrderLine is one purchasable item within an order, either a digital
// license or a physical print. Lines are owned by exactly one order.
type OrderLine struct {
	ID                string    `db:"id" json:"id"`
	OrderID           string    `db:"order_id" json:"order_id"`
	PhotoID           string    `db:"photo_id" json:"photo_id"`
	ItemType          string    `db:"item_type" json:"item_type"`
	PrintSpecID       string    `db:"print_spec_id" json:"print_spec_id,omitempty"`
	UnitPrice         int64     `db:"unit_price" json:"unit_price"`
	Quantity          int       `db:"quantity" json:"quantity"`
	FulfillmentStatus string    `db:"fulfillment_status" json:"fulfillment_status"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Total returns the line total in minor currency units.
func (l OrderLine) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// Line item types
const (
	LineTypeDigital = "DIGITAL"
	LineTypePrint   = "PRINT"
)

// Fulfillment sub-statuses for print lines. Partner failures land here and
// never touch the parent order's payment state.
const (
	FulfillmentNone       = "NONE"
	FulfillmentDispatched = "DISPATCHED"
	FulfillmentFailed     = "FAILED"
	FulfillmentCompleted  = "COMPLETED"
)

// PurchasedLine is an order line joined with its parent order's current
// status, as read by the entitlement resolver.
type PurchasedLine struct {
	OrderLine
	OrderStatus string `db:"order_status" json:"order_status"`
}

// PaymentEvent is a payment-gateway webhook delivery. The gateway delivers
// at least once and possibly out of order; IdempotencyKey and SequenceNumber
// make reapplication safe.
type PaymentEvent struct {
	OrderID        string `json:"order_id" binding:"required"`
	IdempotencyKey string `json:"idempotency_key" binding:"required"`
	SequenceNumber int64  `json:"sequence_number" binding:"required"`
	Status         string `json:"status" binding:"required"`
	Amount         int64  `json:"amount"`
}

// Payment event statuses (gateway contract)
const (
	PaymentStatusPaid      = "paid"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusCancelled = "cancelled"
)

// AppliedPaymentEvent is the durable record of a processed webhook, keyed by
// idempotency key so replays return the already-resulting state.
type AppliedPaymentEvent struct {
	IdempotencyKey  string    `db:"idempotency_key"`
	OrderID         string    `db:"order_id"`
	SequenceNumber  int64     `db:"sequence_number"`
	EventStatus     string    `db:"event_status"`
	ResultingStatus string    `db:"resulting_status"`
	AppliedAt       time.Time `db:"applied_at"`
}

// PayoutRecord aggregates a photographer's share of fulfilled, non-refunded
// lines over a period. Immutable once processed.
type PayoutRecord struct {
	ID             string    `db:"id" json:"id"`
	PhotographerID string    `db:"photographer_id" json:"photographer_id"`
	Amount         int64     `db:"amount" json:"amount"`
	Status         string    `db:"status" json:"status"`
	PeriodStart    time.Time `db:"period_start" json:"period_start"`
	PeriodEnd      time.Time `db:"period_end" json:"period_end"`
	LineIDs        []string  `db:"-" json:"line_ids"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	ProcessedAt    *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

// Payout statuses
const (
	PayoutStatusPending   = "PENDING"
	PayoutStatusProcessed = "PROCESSED"
	PayoutStatusFailed    = "FAILED"
)

// PayableLine is one fulfilled, unrefunded, not-yet-paid-out order line as
// selected for payout computation.
type PayableLine struct {
	LineID         string `db:"line_id"`
	PhotographerID string `db:"photographer_id"`
	UnitPrice      int64  `db:"unit_price"`
	Quantity       int    `db:"quantity"`
}

// PayoutPeriod bounds one payout computation run.
type PayoutPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
