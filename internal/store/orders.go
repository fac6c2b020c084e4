package store

import (
	"context"
	"database/sql"
	"fmt"

	"photo-marketplace/internal/models"
)

// CreateOrder inserts an order and its lines in a single transaction. The
// caller has already recomputed and verified the total.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, lines []models.OrderLine) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create order: %w", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, order, `
		INSERT INTO orders (id, buyer_id, total_amount, status, payment_ref, last_event_seq)
		VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING *`,
		order.ID, order.BuyerID, order.TotalAmount, order.Status, order.PaymentRef)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range lines {
		line := &lines[i]
		err = tx.GetContext(ctx, line, `
			INSERT INTO order_lines (id, order_id, photo_id, item_type, print_spec_id, unit_price, quantity, fulfillment_status)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
			RETURNING id, order_id, photo_id, item_type, COALESCE(print_spec_id, '') AS print_spec_id, unit_price, quantity, fulfillment_status, created_at`,
			line.ID, order.ID, line.PhotoID, line.ItemType, line.PrintSpecID,
			line.UnitPrice, line.Quantity, line.FulfillmentStatus)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

// GetOrderLinesByOrderID retrieves all lines for an order
func (s *Store) GetOrderLinesByOrderID(ctx context.Context, orderID string) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := s.db.SelectContext(ctx, &lines, `
		SELECT id, order_id, photo_id, item_type, COALESCE(print_spec_id, '') AS print_spec_id,
		       unit_price, quantity, fulfillment_status, created_at
		FROM order_lines WHERE order_id = $1 ORDER BY created_at`, orderID)
	return lines, err
}

// GetOrdersByBuyerID retrieves a buyer's purchase history
func (s *Store) GetOrdersByBuyerID(ctx context.Context, buyerID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE buyer_id = $1 ORDER BY created_at DESC", buyerID)
	return orders, err
}

// LinesForPhoto returns a buyer's order lines for one photo joined with the
// parent order's current status. The entitlement resolver reads this on
// every resolution so a transition applied a moment ago is already visible.
func (s *Store) LinesForPhoto(ctx context.Context, buyerID, photoID string) ([]models.PurchasedLine, error) {
	var lines []models.PurchasedLine
	err := s.db.SelectContext(ctx, &lines, `
		SELECT l.id, l.order_id, l.photo_id, l.item_type, COALESCE(l.print_spec_id, '') AS print_spec_id,
		       l.unit_price, l.quantity, l.fulfillment_status, l.created_at,
		       o.status AS order_status
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE o.buyer_id = $1 AND l.photo_id = $2
		ORDER BY l.created_at DESC`, buyerID, photoID)
	if err != nil {
		return nil, fmt.Errorf("lines for photo: %w", err)
	}
	return lines, nil
}

// ApplyPaymentEvent applies a gateway webhook to an order inside one
// transaction. The order row is locked FOR UPDATE so concurrent deliveries
// for the same order serialize here regardless of any upstream gating.
// Replayed idempotency keys return the already-recorded resulting state;
// stale sequence numbers and disallowed transitions surface as ErrConflict.
func (s *Store) ApplyPaymentEvent(ctx context.Context, ev *models.PaymentEvent) (*models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment event: %w", err)
	}
	defer tx.Rollback()

	var applied models.AppliedPaymentEvent
	err = tx.GetContext(ctx, &applied,
		"SELECT * FROM applied_payment_events WHERE idempotency_key = $1", ev.IdempotencyKey)
	if err == nil {
		// Replay: return the state the first delivery produced.
		var order models.Order
		if err := tx.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", applied.OrderID); err != nil {
			return nil, fmt.Errorf("load replayed order: %w", err)
		}
		return &order, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("check idempotency: %w", err)
	}

	var order models.Order
	err = tx.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1 FOR UPDATE", ev.OrderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", ev.OrderID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}

	if ev.SequenceNumber <= order.LastEventSeq {
		return nil, fmt.Errorf("event seq %d behind order seq %d: %w",
			ev.SequenceNumber, order.LastEventSeq, models.ErrConflict)
	}

	next, err := models.NextOrderStatus(order.Status, ev.Status)
	if err != nil {
		return nil, fmt.Errorf("order %s in %s got %s: %w", order.ID, order.Status, ev.Status, err)
	}

	if ev.Status == models.PaymentStatusPaid && ev.Amount != order.TotalAmount {
		return nil, fmt.Errorf("paid amount %d does not match order total %d: %w",
			ev.Amount, order.TotalAmount, models.ErrValidation)
	}

	paymentRef := order.PaymentRef
	if ev.Status == models.PaymentStatusPaid {
		paymentRef = ev.IdempotencyKey
	}

	err = tx.GetContext(ctx, &order, `
		UPDATE orders SET status = $1, last_event_seq = $2, payment_ref = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING *`,
		next, ev.SequenceNumber, paymentRef, order.ID)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO applied_payment_events (idempotency_key, order_id, sequence_number, event_status, resulting_status)
		VALUES ($1, $2, $3, $4, $5)`,
		ev.IdempotencyKey, order.ID, ev.SequenceNumber, ev.Status, next)
	if err != nil {
		return nil, fmt.Errorf("record payment event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment event: %w", err)
	}
	return &order, nil
}

// UpdateLineFulfillmentStatus updates only the fulfillment sub-status of a
// print line. Payment state on the parent order is untouched.
func (s *Store) UpdateLineFulfillmentStatus(ctx context.Context, lineID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE order_lines SET fulfillment_status = $1 WHERE id = $2", status, lineID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order line %s: %w", lineID, models.ErrNotFound)
	}
	return nil
}
