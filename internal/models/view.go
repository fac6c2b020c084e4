package models

// RenderedView is what the delivery boundary serves for a photo at a given
// access level. When Protected is true the original URL is withheld
// entirely; only the overlaid thumbnail rendering ships. That withholding,
// not the overlay, is the security boundary.
type RenderedView struct {
	PhotoID      string           `json:"photo_id"`
	AccessLevel  AccessLevel      `json:"access_level"`
	Protected    bool             `json:"protected"`
	SourceURL    string           `json:"source_url,omitempty"`
	ThumbnailURL string           `json:"thumbnail_url,omitempty"`
	Watermark    *WatermarkPlan   `json:"watermark,omitempty"`
	Interaction  InteractionFlags `json:"interaction"`
}

// WatermarkPlan describes the protective overlay for a preview rendering.
// It is a plan, not pixels: the delivery boundary composites it. Rendering
// the same plan twice yields the same output; protection never compounds.
type WatermarkPlan struct {
	Text          string       `json:"text"`
	GridRows      int          `json:"grid_rows"`
	GridCols      int          `json:"grid_cols"`
	TileOpacity   float64      `json:"tile_opacity"`
	TileRotation  int          `json:"tile_rotation_deg"`
	CornerMarks   []CornerMark `json:"corner_marks"`
	CornerOpacity float64      `json:"corner_opacity"`
}

// CornerMark is a watermark placed independently of the tile grid so a crop
// that removes the tiling still carries a mark.
type CornerMark struct {
	Position string `json:"position"`
}

// Corner positions
const (
	CornerTopLeft     = "top-left"
	CornerBottomRight = "bottom-right"
)

// InteractionFlags tell the client which affordances to suppress. Advisory
// only; a determined client can ignore them, which is why protected views
// never carry source bytes in the first place.
type InteractionFlags struct {
	AllowSave bool `json:"allow_save"`
	AllowDrag bool `json:"allow_drag"`
	AllowCopy bool `json:"allow_copy"`
}
