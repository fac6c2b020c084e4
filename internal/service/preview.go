package service

import (
	"photo-marketplace/internal/models"
	"photo-marketplace/internal/util"
)

// Watermark geometry. The tile grid covers the whole frame so no crop
// avoids it; the corner marks survive a crop that removes the tiling.
const (
	watermarkGridRows      = 3
	watermarkGridCols      = 3
	watermarkTileOpacity   = 0.30
	watermarkTileRotation  = 45
	watermarkCornerOpacity = 0.80
)

// PreviewService produces the representation of a photo that may be
// delivered for a given access level. It is a pure function of its inputs:
// rendering the same photo twice yields identical plans, never compounded
// protection.
type PreviewService struct {
	watermarkText string
}

// NewPreviewService creates a new preview service
func NewPreviewService(watermarkText string) *PreviewService {
	return &PreviewService{watermarkText: watermarkText}
}

// RenderPreview builds the view for a photo at the given access level.
// Full-resolution and print-ready pass the original through unmodified.
// Everything else gets a protected view whose source URL is withheld —
// the overlay and interaction flags are deterrents, but withholding the
// original bytes is the actual boundary.
func (s *PreviewService) RenderPreview(photo *models.Photo, level models.AccessLevel) models.RenderedView {
	if level.GrantsSource() {
		util.PreviewsRenderedTotal.WithLabelValues("false").Inc()
		return models.RenderedView{
			PhotoID:      photo.ID,
			AccessLevel:  level,
			Protected:    false,
			SourceURL:    photo.ImageURL,
			ThumbnailURL: photo.ThumbnailURL,
			Interaction: models.InteractionFlags{
				AllowSave: true,
				AllowDrag: true,
				AllowCopy: true,
			},
		}
	}

	util.PreviewsRenderedTotal.WithLabelValues("true").Inc()
	return models.RenderedView{
		PhotoID:      photo.ID,
		AccessLevel:  level,
		Protected:    true,
		ThumbnailURL: photo.ThumbnailURL,
		Watermark: &models.WatermarkPlan{
			Text:         s.watermarkText,
			GridRows:     watermarkGridRows,
			GridCols:     watermarkGridCols,
			TileOpacity:  watermarkTileOpacity,
			TileRotation: watermarkTileRotation,
			CornerMarks: []models.CornerMark{
				{Position: models.CornerTopLeft},
				{Position: models.CornerBottomRight},
			},
			CornerOpacity: watermarkCornerOpacity,
		},
		Interaction: models.InteractionFlags{},
	}
}
