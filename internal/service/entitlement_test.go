package service

import (
	"context"
	"fmt"
	"testing"

	"photo-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger is an in-memory LedgerReader. Mutating it between resolutions
// mimics ledger writes landing mid-session.
type fakeLedger struct {
	photos map[string]*models.Photo
	lines  map[string][]models.PurchasedLine // buyerID|photoID
	err    error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		photos: make(map[string]*models.Photo),
		lines:  make(map[string][]models.PurchasedLine),
	}
}

func (f *fakeLedger) GetPhotoByID(_ context.Context, id string) (*models.Photo, error) {
	if f.err != nil {
		return nil, f.err
	}
	photo, ok := f.photos[id]
	if !ok {
		return nil, fmt.Errorf("photo %s: %w", id, models.ErrNotFound)
	}
	return photo, nil
}

func (f *fakeLedger) LinesForPhoto(_ context.Context, buyerID, photoID string) ([]models.PurchasedLine, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lines[buyerID+"|"+photoID], nil
}

func (f *fakeLedger) setLine(buyerID, photoID, itemType, orderStatus string) {
	key := buyerID + "|" + photoID
	f.lines[key] = []models.PurchasedLine{{
		OrderLine:   models.OrderLine{PhotoID: photoID, ItemType: itemType, UnitPrice: 2500, Quantity: 1},
		OrderStatus: orderStatus,
	}}
}

func TestResolveAccessPrecedence(t *testing.T) {
	ledger := newFakeLedger()
	ledger.photos["photo-1"] = &models.Photo{
		ID:             "photo-1",
		PhotographerID: "creator-1",
		DigitalPrice:   2500,
		IsActive:       true,
	}
	svc := NewEntitlementService(ledger)
	ctx := context.Background()

	tests := []struct {
		name   string
		viewer models.Viewer
		setup  func()
		want   models.AccessLevel
	}{
		{
			name:   "admin gets full resolution",
			viewer: models.Viewer{UserID: "admin-1", Role: models.RoleAdmin},
			want:   models.AccessFullResolution,
		},
		{
			name:   "owning creator gets full resolution",
			viewer: models.Viewer{UserID: "creator-1", Role: models.RoleCreator},
			want:   models.AccessFullResolution,
		},
		{
			name:   "other creator gets preview",
			viewer: models.Viewer{UserID: "creator-2", Role: models.RoleCreator},
			want:   models.AccessPreviewOnly,
		},
		{
			name:   "anonymous gets preview",
			viewer: models.Viewer{},
			want:   models.AccessPreviewOnly,
		},
		{
			name:   "consumer without purchase gets preview",
			viewer: models.Viewer{UserID: "buyer-1", Role: models.RoleConsumer},
			want:   models.AccessPreviewOnly,
		},
		{
			name:   "consumer with fulfilled digital line gets full resolution",
			viewer: models.Viewer{UserID: "buyer-1", Role: models.RoleConsumer},
			setup: func() {
				ledger.setLine("buyer-1", "photo-1", models.LineTypeDigital, models.OrderStatusFulfilled)
			},
			want: models.AccessFullResolution,
		},
		{
			name:   "consumer with pending digital line gets preview",
			viewer: models.Viewer{UserID: "buyer-2", Role: models.RoleConsumer},
			setup: func() {
				ledger.setLine("buyer-2", "photo-1", models.LineTypeDigital, models.OrderStatusPending)
			},
			want: models.AccessPreviewOnly,
		},
		{
			name:   "consumer with fulfilled print line gets print-ready",
			viewer: models.Viewer{UserID: "buyer-3", Role: models.RoleConsumer},
			setup: func() {
				ledger.setLine("buyer-3", "photo-1", models.LineTypePrint, models.OrderStatusFulfilled)
			},
			want: models.AccessPrintReady,
		},
		{
			name:   "malformed role fails closed to preview",
			viewer: models.Viewer{UserID: "buyer-4", Role: "superuser"},
			want:   models.AccessPreviewOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			assert.Equal(t, tt.want, svc.ResolveAccess(ctx, tt.viewer, "photo-1"))
		})
	}
}

func TestResolveAccessRefundRevokes(t *testing.T) {
	// Purchase grants access; a refund on the parent order revokes it on the
	// very next resolution because the resolver reads current state.
	ledger := newFakeLedger()
	ledger.photos["photo-x"] = &models.Photo{
		ID:             "photo-x",
		PhotographerID: "creator-1",
		DigitalPrice:   2500,
		IsActive:       true,
	}
	svc := NewEntitlementService(ledger)
	ctx := context.Background()
	buyer := models.Viewer{UserID: "buyer-1", Role: models.RoleConsumer}

	assert.Equal(t, models.AccessPreviewOnly, svc.ResolveAccess(ctx, buyer, "photo-x"))

	ledger.setLine("buyer-1", "photo-x", models.LineTypeDigital, models.OrderStatusFulfilled)
	assert.Equal(t, models.AccessFullResolution, svc.ResolveAccess(ctx, buyer, "photo-x"))

	ledger.setLine("buyer-1", "photo-x", models.LineTypeDigital, models.OrderStatusRefunded)
	assert.Equal(t, models.AccessPreviewOnly, svc.ResolveAccess(ctx, buyer, "photo-x"))
}

func TestResolveAccessFailsClosed(t *testing.T) {
	ledger := newFakeLedger()
	ledger.photos["photo-1"] = &models.Photo{ID: "photo-1", PhotographerID: "creator-1", IsActive: true}
	ledger.err = fmt.Errorf("connection reset: %w", models.ErrUnavailable)
	svc := NewEntitlementService(ledger)

	level := svc.ResolveAccess(context.Background(), models.Viewer{UserID: "buyer-1", Role: models.RoleConsumer}, "photo-1")
	assert.Equal(t, models.AccessPreviewOnly, level)
}

func TestResolveAccessUnknownPhoto(t *testing.T) {
	svc := NewEntitlementService(newFakeLedger())
	ctx := context.Background()

	level := svc.ResolveAccess(ctx, models.Viewer{UserID: "buyer-1", Role: models.RoleConsumer}, "missing")
	assert.Equal(t, models.AccessNone, level)

	// Admins never need the catalog row.
	level = svc.ResolveAccess(ctx, models.Viewer{UserID: "admin-1", Role: models.RoleAdmin}, "missing")
	assert.Equal(t, models.AccessFullResolution, level)
}

func TestResolveAccessInactivePhoto(t *testing.T) {
	ledger := newFakeLedger()
	ledger.photos["retired"] = &models.Photo{
		ID:             "retired",
		PhotographerID: "creator-1",
		IsActive:       false,
	}
	svc := NewEntitlementService(ledger)
	ctx := context.Background()

	// Strangers see nothing.
	level := svc.ResolveAccess(ctx, models.Viewer{UserID: "buyer-1", Role: models.RoleConsumer}, "retired")
	require.Equal(t, models.AccessNone, level)

	// The owner and past buyers keep their access after deactivation.
	level = svc.ResolveAccess(ctx, models.Viewer{UserID: "creator-1", Role: models.RoleCreator}, "retired")
	assert.Equal(t, models.AccessFullResolution, level)

	ledger.setLine("buyer-2", "retired", models.LineTypeDigital, models.OrderStatusFulfilled)
	level = svc.ResolveAccess(ctx, models.Viewer{UserID: "buyer-2", Role: models.RoleConsumer}, "retired")
	assert.Equal(t, models.AccessFullResolution, level)
}
