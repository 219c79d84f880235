package spritelayer

// FakeHostMap is a minimal, deterministic HostMap suitable for tests and
// the FrameTestRunner harness: a flat equirectangular projection centered on
// CenterLoc, with no perspective or rotation.
type FakeHostMap struct {
	CenterLoc       Location
	Zoom            float64
	VisibleFlag     bool
	PixelsPerDegree float64
}

// NewFakeHostMap returns a FakeHostMap centered at the origin, visible, at
// zoom 10.
func NewFakeHostMap() *FakeHostMap {
	return &FakeHostMap{Zoom: 10, VisibleFlag: true, PixelsPerDegree: 100000}
}

func (f *FakeHostMap) Project(loc Location) (Vec2, bool) {
	return Vec2{
		X: (loc.Lng - f.CenterLoc.Lng) * f.PixelsPerDegree,
		Y: (f.CenterLoc.Lat - loc.Lat) * f.PixelsPerDegree,
	}, true
}

func (f *FakeHostMap) Unproject(p Vec2) (Location, bool) {
	return Location{
		Lng: f.CenterLoc.Lng + p.X/f.PixelsPerDegree,
		Lat: f.CenterLoc.Lat - p.Y/f.PixelsPerDegree,
	}, true
}

func (f *FakeHostMap) GetZoom() float64       { return f.Zoom }
func (f *FakeHostMap) GetCenter() Location    { return f.CenterLoc }
func (f *FakeHostMap) TriggerRepaint()        {}
func (f *FakeHostMap) SetCenter(loc Location) { f.CenterLoc = loc }
func (f *FakeHostMap) SetBearing(deg float64) {}
func (f *FakeHostMap) Visible() bool          { return f.VisibleFlag }

// FakeProjectionHost is a minimal ProjectionHost using an identity clip
// matrix, so mercator coordinates pass through to clip space unchanged and
// clip-to-screen math can be checked by hand in tests.
type FakeProjectionHost struct {
	DrawingBufferW, DrawingBufferH int
	PixelRatio                     float64
}

// NewFakeProjectionHost returns a FakeProjectionHost sized for an 800x600
// drawing buffer at pixel ratio 1.
func NewFakeProjectionHost() *FakeProjectionHost {
	return &FakeProjectionHost{DrawingBufferW: 800, DrawingBufferH: 600, PixelRatio: 1}
}

func (f *FakeProjectionHost) ClipContext() (ClipContext, bool) {
	return ClipContext{
		Matrix:         identityClipMatrix,
		DrawingBufferW: f.DrawingBufferW,
		DrawingBufferH: f.DrawingBufferH,
		PixelRatio:     f.PixelRatio,
	}, true
}

func (f *FakeProjectionHost) FromLngLat(loc Location) MercatorPoint {
	return MercatorPoint{X: loc.Lng, Y: loc.Lat, Z: loc.Alt}
}

func (f *FakeProjectionHost) CalculatePerspectiveRatio(loc Location, m MercatorPoint) float64 {
	return 1
}

var identityClipMatrix = [16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}
