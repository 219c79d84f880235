package spritelayer

// TextureFiltering configures how a host graphics context should sample
// atlas pages. Mipmap min-filters imply GenerateMipmaps, per the
// configuration enumeration's filtering rule.
type TextureFiltering struct {
	MinFilter       MinFilter
	MagFilter       MagFilter
	GenerateMipmaps bool
	MaxAnisotropy   int
}

// resolved returns a copy with GenerateMipmaps forced true when MinFilter
// requires mipmaps.
func (f TextureFiltering) resolved() TextureFiltering {
	if f.MinFilter.IsMipmap() {
		f.GenerateMipmaps = true
	}
	return f
}

// LayerOptions bundles every construction-time configuration a Layer
// needs: atlas sizing, cooperative work budgets, scaling, and filtering.
// Unset (zero-value) fields fall back to the defaults below.
type LayerOptions struct {
	ID string

	SpriteScaling    ScalingOptions
	TextureFiltering TextureFiltering

	AtlasPageSize  int
	AtlasBudget    AtlasQueueBudget
	GlyphBudget    GlyphQueueBudget

	// Debug enables warning-level logging for degraded-but-recovered
	// conditions (missing atlas regions, resource exhaustion, dropped
	// mutations).
	Debug bool
}

// withDefaults fills in zero-valued fields with sensible defaults.
func (o LayerOptions) withDefaults() LayerOptions {
	if o.AtlasPageSize <= 0 {
		o.AtlasPageSize = 1024
	}
	if o.AtlasBudget.MaxOperationsPerPass <= 0 && o.AtlasBudget.TimeBudget <= 0 {
		o.AtlasBudget = DefaultAtlasQueueBudget
	}
	if o.GlyphBudget.MaxPerPass <= 0 && o.GlyphBudget.TimeBudget <= 0 {
		o.GlyphBudget = DefaultGlyphQueueBudget
	}
	if o.SpriteScaling.ZoomScale <= 0 {
		o.SpriteScaling.ZoomScale = 1
	}
	o.TextureFiltering = o.TextureFiltering.resolved()
	return o
}
