package service

import (
	"context"
	"errors"

	"photo-marketplace/internal/models"
	"photo-marketplace/internal/util"

	"go.uber.org/zap"
)

// LedgerReader is the slice of the store the resolver needs. It always hits
// current state; entitlements are never cached across a ledger write.
type LedgerReader interface {
	GetPhotoByID(ctx context.Context, id string) (*models.Photo, error)
	LinesForPhoto(ctx context.Context, buyerID, photoID string) ([]models.PurchasedLine, error)
}

// EntitlementService answers what a viewer may see and do with a photo
// right now.
type EntitlementService struct {
	ledger LedgerReader
	logger *zap.Logger
}

// NewEntitlementService creates a new entitlement service
func NewEntitlementService(ledger LedgerReader) *EntitlementService {
	return &EntitlementService{
		ledger: ledger,
		logger: util.GetLogger(),
	}
}

// ResolveAccess computes the access level for (viewer, photo). Rules apply
// in precedence order, first match wins: admin, owning creator, fulfilled
// digital purchase, fulfilled print purchase, then preview. Every failure
// mode degrades to preview-only; no error path can widen access.
func (s *EntitlementService) ResolveAccess(ctx context.Context, viewer models.Viewer, photoID string) models.AccessLevel {
	ctx, span := util.StartSpan(ctx, "EntitlementService.ResolveAccess")
	defer span.End()

	level := s.resolve(ctx, viewer, photoID)
	util.AccessResolutionsTotal.WithLabelValues(string(level)).Inc()
	return level
}

func (s *EntitlementService) resolve(ctx context.Context, viewer models.Viewer, photoID string) models.AccessLevel {
	if viewer.Role == models.RoleAdmin {
		return models.AccessFullResolution
	}

	// A role we don't recognize is a malformed viewer; fail closed rather
	// than guessing what the identity provider meant.
	if viewer.Role != "" && !viewer.Role.Valid() {
		s.logger.Warn("Malformed viewer, failing closed",
			zap.String("user_id", viewer.UserID),
			zap.String("role", string(viewer.Role)))
		util.AccessFailClosedTotal.Inc()
		return models.AccessPreviewOnly
	}

	photo, err := s.ledger.GetPhotoByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.AccessNone
		}
		s.logger.Warn("Photo lookup failed, failing closed",
			zap.String("photo_id", photoID), zap.Error(err))
		util.AccessFailClosedTotal.Inc()
		return models.AccessPreviewOnly
	}

	if !viewer.Anonymous() && viewer.UserID == photo.PhotographerID {
		return models.AccessFullResolution
	}

	if !viewer.Anonymous() {
		lines, err := s.ledger.LinesForPhoto(ctx, viewer.UserID, photoID)
		if err != nil {
			s.logger.Warn("Ledger lookup failed, failing closed",
				zap.String("photo_id", photoID),
				zap.String("user_id", viewer.UserID),
				zap.Error(err))
			util.AccessFailClosedTotal.Inc()
			return models.AccessPreviewOnly
		}

		// A refund flips the parent order out of FULFILLED, so refunded
		// purchases stop matching here with no extra bookkeeping.
		if hasFulfilledLine(lines, models.LineTypeDigital) {
			return models.AccessFullResolution
		}
		if hasFulfilledLine(lines, models.LineTypePrint) {
			return models.AccessPrintReady
		}
	}

	if !photo.IsActive {
		return models.AccessNone
	}
	return models.AccessPreviewOnly
}

func hasFulfilledLine(lines []models.PurchasedLine, itemType string) bool {
	for _, line := range lines {
		if line.ItemType == itemType && line.OrderStatus == models.OrderStatusFulfilled {
			return true
		}
	}
	return false
}
