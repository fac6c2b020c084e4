package store

import (
	"context"
	"fmt"
	"time"

	"photo-marketplace/internal/models"
)

// PayableLines selects fulfilled, non-refunded order lines inside the period
// that no pending or processed payout record already covers. Refunds flip
// the parent order's status, so refunded lines drop out of this query on
// their own.
func (s *Store) PayableLines(ctx context.Context, from, to time.Time) ([]models.PayableLine, error) {
	var lines []models.PayableLine
	err := s.db.SelectContext(ctx, &lines, `
		SELECT l.id AS line_id, p.photographer_id, l.unit_price, l.quantity
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		JOIN photos p ON p.id = l.photo_id
		WHERE o.status = $1
		  AND o.updated_at >= $2 AND o.updated_at < $3
		  AND NOT EXISTS (
			SELECT 1 FROM payout_record_lines prl
			JOIN payout_records pr ON pr.id = prl.payout_record_id
			WHERE prl.order_line_id = l.id AND pr.status IN ($4, $5)
		  )
		ORDER BY p.photographer_id, l.created_at`,
		models.OrderStatusFulfilled, from, to,
		models.PayoutStatusPending, models.PayoutStatusProcessed)
	if err != nil {
		return nil, fmt.Errorf("select payable lines: %w", err)
	}
	return lines, nil
}

// CreatePayoutRecord inserts a payout record and its covered line ids in one
// transaction: either the whole creator group lands or none of it does, so a
// crashed batch never leaves a record referencing only some of its lines.
func (s *Store) CreatePayoutRecord(ctx context.Context, record *models.PayoutRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payout record: %w", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, record, `
		INSERT INTO payout_records (id, photographer_id, amount, status, period_start, period_end)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, photographer_id, amount, status, period_start, period_end, created_at, processed_at`,
		record.ID, record.PhotographerID, record.Amount, record.Status,
		record.PeriodStart, record.PeriodEnd)
	if err != nil {
		return fmt.Errorf("insert payout record: %w", err)
	}

	for _, lineID := range record.LineIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO payout_record_lines (payout_record_id, order_line_id) VALUES ($1, $2)",
			record.ID, lineID)
		if err != nil {
			return fmt.Errorf("insert payout record line: %w", err)
		}
	}

	return tx.Commit()
}

// ListPayouts retrieves payout records, optionally filtered by status
func (s *Store) ListPayouts(ctx context.Context, status string) ([]models.PayoutRecord, error) {
	var records []models.PayoutRecord
	var err error
	if status == "" {
		err = s.db.SelectContext(ctx, &records,
			"SELECT * FROM payout_records ORDER BY created_at DESC")
	} else {
		err = s.db.SelectContext(ctx, &records,
			"SELECT * FROM payout_records WHERE status = $1 ORDER BY created_at DESC", status)
	}
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}

	for i := range records {
		var lineIDs []string
		err = s.db.SelectContext(ctx, &lineIDs,
			"SELECT order_line_id FROM payout_record_lines WHERE payout_record_id = $1", records[i].ID)
		if err != nil {
			return nil, fmt.Errorf("payout record lines: %w", err)
		}
		records[i].LineIDs = lineIDs
	}
	return records, nil
}

// MarkPayoutProcessed finalizes a payout record. Processed records are
// immutable from then on; the guard clause enforces it.
func (s *Store) MarkPayoutProcessed(ctx context.Context, payoutID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE payout_records SET status = $1, processed_at = NOW()
		WHERE id = $2 AND status = $3`,
		models.PayoutStatusProcessed, payoutID, models.PayoutStatusPending)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payout %s not pending: %w", payoutID, models.ErrConflict)
	}
	return nil
}

// MarkPayoutFailed flags a payout whose transfer failed; its lines become
// payable again once the record is failed.
func (s *Store) MarkPayoutFailed(ctx context.Context, payoutID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE payout_records SET status = $1 WHERE id = $2 AND status = $3",
		models.PayoutStatusFailed, payoutID, models.PayoutStatusPending)
	return err
}
