package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"photo-marketplace/internal/models"
	"photo-marketplace/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PayoutStore is the slice of the store the calculator needs.
type PayoutStore interface {
	PayableLines(ctx context.Context, from, to time.Time) ([]models.PayableLine, error)
	CreatePayoutRecord(ctx context.Context, record *models.PayoutRecord) error
	ListPayouts(ctx context.Context, status string) ([]models.PayoutRecord, error)
}

// PayoutPublisher announces created payout records downstream. Satisfied by
// broker.EventPublisher.
type PayoutPublisher interface {
	PublishPayoutComputed(ctx context.Context, event *models.PayoutComputedEvent) error
}

// PayoutService aggregates fulfilled, unrefunded order lines into
// photographer payout obligations, net of platform commission.
type PayoutService struct {
	store          PayoutStore
	eventPublisher PayoutPublisher
	logger         *zap.Logger
	commissionRate float64
}

// NewPayoutService creates a new payout service
func NewPayoutService(store PayoutStore, eventPublisher PayoutPublisher, commissionRate float64) *PayoutService {
	return &PayoutService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		commissionRate: commissionRate,
	}
}

// ComputePayouts creates one payout record per photographer covering their
// payable lines in the period. Lines already covered by a pending or
// processed record are excluded at selection time, so re-running over an
// overlapping period creates nothing twice. Each record and its covered
// line ids commit atomically.
func (s *PayoutService) ComputePayouts(ctx context.Context, period models.PayoutPeriod) ([]models.PayoutRecord, error) {
	ctx, span := util.StartSpan(ctx, "PayoutService.ComputePayouts")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PayoutComputeLatency.Observe(time.Since(start).Seconds())
	}()

	if !period.End.After(period.Start) {
		return nil, fmt.Errorf("payout period end must follow start: %w", models.ErrValidation)
	}

	lines, err := s.store.PayableLines(ctx, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to select payable lines: %w", err)
	}
	if len(lines) == 0 {
		s.logger.Info("No payable lines in period",
			zap.Time("start", period.Start), zap.Time("end", period.End))
		return []models.PayoutRecord{}, nil
	}

	groups := groupByPhotographer(lines)

	records := make([]models.PayoutRecord, 0, len(groups))
	for _, photographerID := range sortedKeys(groups) {
		group := groups[photographerID]

		record := models.PayoutRecord{
			ID:             uuid.New().String(),
			PhotographerID: photographerID,
			Amount:         creatorTotal(group, s.commissionRate),
			Status:         models.PayoutStatusPending,
			PeriodStart:    period.Start,
			PeriodEnd:      period.End,
			LineIDs:        lineIDs(group),
		}

		if err := s.store.CreatePayoutRecord(ctx, &record); err != nil {
			// Earlier groups already committed; their lines are covered
			// now, so a retry resumes with only the remainder.
			return records, fmt.Errorf("failed to create payout for %s: %w", photographerID, err)
		}

		util.PayoutRecordsTotal.Inc()
		util.PayoutAmountTotal.Add(float64(record.Amount))
		s.logger.Info("Payout record created",
			zap.String("payout_id", record.ID),
			zap.String("photographer_id", photographerID),
			zap.Int64("amount", record.Amount),
			zap.Int("lines", len(record.LineIDs)))

		event := &models.PayoutComputedEvent{
			BaseEvent:      newBaseEvent(models.EventTypePayoutComputed),
			PayoutID:       record.ID,
			PhotographerID: photographerID,
			Amount:         record.Amount,
			LineCount:      len(record.LineIDs),
		}
		if err := s.eventPublisher.PublishPayoutComputed(ctx, event); err != nil {
			s.logger.Error("Failed to publish PayoutComputed event", zap.Error(err))
		}

		records = append(records, record)
	}

	return records, nil
}

// ListPayouts retrieves payout records for the admin surface
func (s *PayoutService) ListPayouts(ctx context.Context, status string) ([]models.PayoutRecord, error) {
	return s.store.ListPayouts(ctx, status)
}

// creatorShare is the photographer's cut of one line total. Rounding is
// per-line, floored to the minor unit, so the platform never under-collects
// commission across many small lines.
func creatorShare(lineTotal int64, commissionRate float64) int64 {
	return int64(math.Floor(float64(lineTotal) * (1 - commissionRate)))
}

func creatorTotal(lines []models.PayableLine, commissionRate float64) int64 {
	var total int64
	for _, line := range lines {
		total += creatorShare(line.UnitPrice*int64(line.Quantity), commissionRate)
	}
	return total
}

func groupByPhotographer(lines []models.PayableLine) map[string][]models.PayableLine {
	groups := make(map[string][]models.PayableLine)
	for _, line := range lines {
		groups[line.PhotographerID] = append(groups[line.PhotographerID], line)
	}
	return groups
}

func lineIDs(lines []models.PayableLine) []string {
	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.LineID
	}
	return ids
}

func sortedKeys(groups map[string][]models.PayableLine) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
