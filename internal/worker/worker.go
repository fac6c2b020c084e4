package worker

import (
	"context"
	"log"
	"time"

	"photo-marketplace/internal/broker"
	"photo-marketplace/internal/models"
	"photo-marketplace/internal/service"
)

// FulfillmentWorker consumes ledger events and drives print fulfillment:
// fulfilled orders get their print lines dispatched, and partner status
// reports land on the line sub-status.
type FulfillmentWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewFulfillmentWorker creates a new fulfillment worker
func NewFulfillmentWorker(consumer *broker.Consumer, fulfillment *service.FulfillmentService) *FulfillmentWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnOrderFulfilled(func(ctx context.Context, event *models.OrderFulfilledEvent) error {
		return fulfillment.DispatchPrintJobs(ctx, event.OrderID)
	})
	eventHandler.OnPrintJobFailed(fulfillment.HandlePrintJobFailed)
	eventHandler.OnPrintJobCompleted(fulfillment.HandlePrintJobCompleted)

	return &FulfillmentWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *FulfillmentWorker) Start(ctx context.Context) error {
	log.Println("Starting fulfillment worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *FulfillmentWorker) Stop() error {
	log.Println("Stopping fulfillment worker...")
	return w.consumer.Close()
}

// PayoutWorker runs the payout calculator on a fixed interval, off the
// request path. Overlapping windows are safe because covered lines are
// excluded at selection time.
type PayoutWorker struct {
	payouts  *service.PayoutService
	interval time.Duration
	lookback time.Duration
}

// NewPayoutWorker creates a new payout worker
func NewPayoutWorker(payouts *service.PayoutService, interval, lookback time.Duration) *PayoutWorker {
	return &PayoutWorker{
		payouts:  payouts,
		interval: interval,
		lookback: lookback,
	}
}

// Start runs the payout loop until the context is cancelled
func (w *PayoutWorker) Start(ctx context.Context) error {
	log.Printf("Starting payout worker: interval=%s, lookback=%s", w.interval, w.lookback)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Payout worker context cancelled, stopping...")
			return ctx.Err()
		case now := <-ticker.C:
			period := models.PayoutPeriod{
				Start: now.Add(-w.lookback),
				End:   now,
			}
			records, err := w.payouts.ComputePayouts(ctx, period)
			if err != nil {
				log.Printf("Payout computation error: %v", err)
				continue
			}
			if len(records) > 0 {
				log.Printf("Payout batch complete: %d records", len(records))
			}
		}
	}
}
