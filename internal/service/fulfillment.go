package service

import (
	"context"
	"fmt"

	"photo-marketplace/internal/broker"
	"photo-marketplace/internal/models"
	"photo-marketplace/internal/store"
	"photo-marketplace/internal/util"

	"go.uber.org/zap"
)

// FulfillmentService hands print lines to the fulfillment partner and
// records the partner's asynchronous status reports. Partner outcomes live
// entirely on the line's fulfillment sub-status: a failed print never
// reopens the parent order's payment state and never triggers a refund —
// refunds arrive only as explicit gateway events.
type FulfillmentService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewFulfillmentService creates a new fulfillment service
func NewFulfillmentService(store *store.Store, eventPublisher *broker.EventPublisher) *FulfillmentService {
	return &FulfillmentService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// DispatchPrintJobs marks every print line of a fulfilled order as
// dispatched and publishes a job event per line for the partner boundary.
// Safe to re-run: already-dispatched lines are skipped.
func (s *FulfillmentService) DispatchPrintJobs(ctx context.Context, orderID string) error {
	ctx, span := util.StartSpan(ctx, "FulfillmentService.DispatchPrintJobs")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != models.OrderStatusFulfilled {
		return fmt.Errorf("order %s is %s, not fulfilled: %w", orderID, order.Status, models.ErrConflict)
	}

	lines, err := s.store.GetOrderLinesByOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}

	for _, line := range lines {
		if line.ItemType != models.LineTypePrint || line.FulfillmentStatus != models.FulfillmentNone {
			continue
		}

		if err := s.store.UpdateLineFulfillmentStatus(ctx, line.ID, models.FulfillmentDispatched); err != nil {
			s.logger.Error("Failed to mark line dispatched",
				zap.String("line_id", line.ID), zap.Error(err))
			continue
		}

		util.PrintJobsDispatchedTotal.Inc()
		s.logger.Info("Print job dispatched",
			zap.String("order_id", orderID),
			zap.String("line_id", line.ID),
			zap.String("print_spec_id", line.PrintSpecID))

		event := &models.PrintJobDispatchedEvent{
			BaseEvent:   newBaseEvent(models.EventTypePrintJobDispatch),
			OrderID:     orderID,
			LineID:      line.ID,
			PhotoID:     line.PhotoID,
			PrintSpecID: line.PrintSpecID,
			Quantity:    line.Quantity,
		}
		if err := s.eventPublisher.PublishPrintJobDispatched(ctx, event); err != nil {
			s.logger.Error("Failed to publish PrintJobDispatched event", zap.Error(err))
		}
	}

	return nil
}

// HandlePrintJobFailed records a partner-reported failure on the line's
// fulfillment sub-status only.
func (s *FulfillmentService) HandlePrintJobFailed(ctx context.Context, event *models.PrintJobStatusEvent) error {
	ctx, span := util.StartSpan(ctx, "FulfillmentService.HandlePrintJobFailed")
	defer span.End()

	s.logger.Warn("Print job failed",
		zap.String("order_id", event.OrderID),
		zap.String("line_id", event.LineID),
		zap.String("reason", event.Reason))

	if err := s.store.UpdateLineFulfillmentStatus(ctx, event.LineID, models.FulfillmentFailed); err != nil {
		return fmt.Errorf("record print failure: %w", err)
	}
	util.PrintJobsFailedTotal.Inc()
	return nil
}

// HandlePrintJobCompleted records a successful delivery
func (s *FulfillmentService) HandlePrintJobCompleted(ctx context.Context, event *models.PrintJobStatusEvent) error {
	ctx, span := util.StartSpan(ctx, "FulfillmentService.HandlePrintJobCompleted")
	defer span.End()

	if err := s.store.UpdateLineFulfillmentStatus(ctx, event.LineID, models.FulfillmentCompleted); err != nil {
		return fmt.Errorf("record print completion: %w", err)
	}

	s.logger.Info("Print job completed",
		zap.String("order_id", event.OrderID),
		zap.String("line_id", event.LineID))
	return nil
}
