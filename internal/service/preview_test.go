package service

import (
	"testing"

	"photo-marketplace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPhoto() *models.Photo {
	return &models.Photo{
		ID:           "photo-1",
		ImageURL:     "https://assets.example.com/originals/photo-1.jpg",
		ThumbnailURL: "https://assets.example.com/thumbs/photo-1.jpg",
	}
}

func TestRenderPreviewPassthrough(t *testing.T) {
	svc := NewPreviewService("Action Aerials")

	for _, level := range []models.AccessLevel{models.AccessFullResolution, models.AccessPrintReady} {
		view := svc.RenderPreview(testPhoto(), level)

		assert.False(t, view.Protected)
		assert.Equal(t, "https://assets.example.com/originals/photo-1.jpg", view.SourceURL)
		assert.Nil(t, view.Watermark)
		assert.True(t, view.Interaction.AllowSave)
	}
}

func TestRenderPreviewProtected(t *testing.T) {
	svc := NewPreviewService("Action Aerials")

	for _, level := range []models.AccessLevel{models.AccessPreviewOnly, models.AccessNone} {
		view := svc.RenderPreview(testPhoto(), level)

		assert.True(t, view.Protected)
		// The original URL must never ship with a protected view.
		assert.Empty(t, view.SourceURL)
		assert.Equal(t, "https://assets.example.com/thumbs/photo-1.jpg", view.ThumbnailURL)

		require.NotNil(t, view.Watermark)
		assert.Equal(t, "Action Aerials", view.Watermark.Text)
		assert.Equal(t, 3, view.Watermark.GridRows)
		assert.Equal(t, 3, view.Watermark.GridCols)
		assert.Len(t, view.Watermark.CornerMarks, 2)

		assert.False(t, view.Interaction.AllowSave)
		assert.False(t, view.Interaction.AllowDrag)
		assert.False(t, view.Interaction.AllowCopy)
	}
}

func TestRenderPreviewIdempotent(t *testing.T) {
	// Same inputs, byte-identical plan: protection never compounds.
	svc := NewPreviewService("Action Aerials")
	photo := testPhoto()

	first := svc.RenderPreview(photo, models.AccessPreviewOnly)
	second := svc.RenderPreview(photo, models.AccessPreviewOnly)

	assert.Equal(t, first, second)
}
