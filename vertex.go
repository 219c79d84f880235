package spritelayer

// Vertex is one emitted vertex: clip-space position plus atlas UV. Six
// vertices (two triangles, a fixed shared-edge split) are written per
// drawable entry, identically for surface and billboard modes.
type Vertex struct {
	ClipX, ClipY, ClipZ, ClipW float32
	U, V                       float32
}

// LineVertex is one vertex of a leader-line or border-outline segment.
// Width is the desired stroke width in pixels; leader lines leave it zero
// (host-default width), while border outlines set it from
// BorderStyle.WidthMeters scaled by the effective pixels-per-meter at the
// image's location.
type LineVertex struct {
	X, Y  float32
	Color Color
	Width float32
}

// FrameBatch is the single batched output of one Layer.Frame call: one
// quad batch split per sub-layer for deterministic blending order, plus
// optional leader-line and border batches.
type FrameBatch struct {
	QuadsBySubLayer        map[int][]Vertex
	LeaderLines            []LineVertex
	Borders                []LineVertex
	HasActiveInterpolation bool
}

// quadIndices is the fixed vertex order shared by surface and billboard
// placement: two triangles (0,1,2) and (0,2,3) over the corner order
// top-left, top-right, bottom-right, bottom-left.
var quadIndices = [6]int{0, 1, 2, 0, 2, 3}

// emitQuad appends the six vertices for one drawable entry's four corners
// (already in clip space) and UVs into batch, keyed by subLayer.
func emitQuad(batch *FrameBatch, subLayer int, corners [4]ClipPoint, uv UVRect) {
	if batch.QuadsBySubLayer == nil {
		batch.QuadsBySubLayer = make(map[int][]Vertex)
	}
	uvCorners := [4][2]float32{
		{uv.U0, uv.V0},
		{uv.U1, uv.V0},
		{uv.U1, uv.V1},
		{uv.U0, uv.V1},
	}
	for _, idx := range quadIndices {
		c := corners[idx]
		batch.QuadsBySubLayer[subLayer] = append(batch.QuadsBySubLayer[subLayer], Vertex{
			ClipX: float32(c.X), ClipY: float32(c.Y), ClipZ: float32(c.Z), ClipW: float32(c.W),
			U: uvCorners[idx][0], V: uvCorners[idx][1],
		})
	}
}
