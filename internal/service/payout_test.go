package service

import (
	"context"
	"testing"
	"time"

	"photo-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePayoutStore keeps payable lines in memory and tracks covered line ids
// the way the real query's NOT EXISTS clause does.
type fakePayoutStore struct {
	lines   []models.PayableLine
	covered map[string]bool
	records []models.PayoutRecord
}

func newFakePayoutStore(lines ...models.PayableLine) *fakePayoutStore {
	return &fakePayoutStore{lines: lines, covered: make(map[string]bool)}
}

func (f *fakePayoutStore) PayableLines(_ context.Context, _, _ time.Time) ([]models.PayableLine, error) {
	var out []models.PayableLine
	for _, line := range f.lines {
		if !f.covered[line.LineID] {
			out = append(out, line)
		}
	}
	return out, nil
}

func (f *fakePayoutStore) CreatePayoutRecord(_ context.Context, record *models.PayoutRecord) error {
	for _, id := range record.LineIDs {
		f.covered[id] = true
	}
	f.records = append(f.records, *record)
	return nil
}

func (f *fakePayoutStore) ListPayouts(_ context.Context, _ string) ([]models.PayoutRecord, error) {
	return f.records, nil
}

type nopPublisher struct{}

func (nopPublisher) PublishPayoutComputed(context.Context, *models.PayoutComputedEvent) error {
	return nil
}

func testPeriod() models.PayoutPeriod {
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return models.PayoutPeriod{Start: end.AddDate(0, 0, -7), End: end}
}

func TestCreatorShare(t *testing.T) {
	// Rounding is per line, floored, so the platform never under-collects.
	assert.Equal(t, int64(800), creatorShare(1000, 0.20))
	assert.Equal(t, int64(1600), creatorShare(2000, 0.20))
	assert.Equal(t, int64(79), creatorShare(99, 0.20))   // 79.2 floors
	assert.Equal(t, int64(0), creatorShare(1, 0.20))     // 0.8 floors
	assert.Equal(t, int64(2500), creatorShare(2500, 0)) // no commission
}

func TestComputePayouts(t *testing.T) {
	store := newFakePayoutStore(
		models.PayableLine{LineID: "line-1", PhotographerID: "creator-1", UnitPrice: 1000, Quantity: 1},
		models.PayableLine{LineID: "line-2", PhotographerID: "creator-1", UnitPrice: 2000, Quantity: 1},
	)
	svc := NewPayoutService(store, nopPublisher{}, 0.20)

	records, err := svc.ComputePayouts(context.Background(), testPeriod())
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "creator-1", records[0].PhotographerID)
	assert.Equal(t, int64(2400), records[0].Amount) // floor(800) + floor(1600)
	assert.Equal(t, models.PayoutStatusPending, records[0].Status)
	assert.ElementsMatch(t, []string{"line-1", "line-2"}, records[0].LineIDs)
}

func TestComputePayoutsRerunIsEmpty(t *testing.T) {
	store := newFakePayoutStore(
		models.PayableLine{LineID: "line-1", PhotographerID: "creator-1", UnitPrice: 1000, Quantity: 1},
		models.PayableLine{LineID: "line-2", PhotographerID: "creator-1", UnitPrice: 2000, Quantity: 1},
	)
	svc := NewPayoutService(store, nopPublisher{}, 0.20)
	ctx := context.Background()

	first, err := svc.ComputePayouts(ctx, testPeriod())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Every line is covered by a pending record now; a second run over the
	// same period pays nothing twice.
	second, err := svc.ComputePayouts(ctx, testPeriod())
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestComputePayoutsGroupsByPhotographer(t *testing.T) {
	store := newFakePayoutStore(
		models.PayableLine{LineID: "line-1", PhotographerID: "creator-b", UnitPrice: 1000, Quantity: 1},
		models.PayableLine{LineID: "line-2", PhotographerID: "creator-a", UnitPrice: 4500, Quantity: 2},
		models.PayableLine{LineID: "line-3", PhotographerID: "creator-b", UnitPrice: 333, Quantity: 3},
	)
	svc := NewPayoutService(store, nopPublisher{}, 0.20)

	records, err := svc.ComputePayouts(context.Background(), testPeriod())
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Deterministic creator order.
	assert.Equal(t, "creator-a", records[0].PhotographerID)
	assert.Equal(t, int64(7200), records[0].Amount) // floor(9000*0.8)

	assert.Equal(t, "creator-b", records[1].PhotographerID)
	// floor(1000*0.8) + floor(999*0.8) = 800 + 799
	assert.Equal(t, int64(1599), records[1].Amount)
	assert.ElementsMatch(t, []string{"line-1", "line-3"}, records[1].LineIDs)
}

func TestComputePayoutsRejectsInvertedPeriod(t *testing.T) {
	svc := NewPayoutService(newFakePayoutStore(), nopPublisher{}, 0.20)

	period := testPeriod()
	period.Start, period.End = period.End, period.Start

	_, err := svc.ComputePayouts(context.Background(), period)
	assert.ErrorIs(t, err, models.ErrValidation)
}
