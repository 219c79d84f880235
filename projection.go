package spritelayer

import (
	"fmt"
	"math"
)

// earthRadiusMeters is the WGS84 mean radius used for the equirectangular
// small-displacement approximation below.
const earthRadiusMeters = 6371008.8

// clipEpsilon is the minimum acceptable clip-space w before a projected
// point is treated as behind or on the near plane.
const clipEpsilon = 1e-6

// Location is a geographic anchor: longitude/latitude in degrees, altitude
// in meters above the map surface.
type Location struct {
	Lng, Lat, Alt float64
}

// ClipPoint is a projected clip-space coordinate.
type ClipPoint struct {
	X, Y, Z, W float64
}

// MercatorPoint is a map projection's intermediate world-space coordinate,
// produced by a ProjectionHost.fromLngLat and consumed by the perspective
// ratio and clip projection steps.
type MercatorPoint struct {
	X, Y, Z float64
}

// ClipContext carries the per-frame projection state supplied by the host:
// a column-major 4x4 clip matrix (16 floats) plus drawing-buffer geometry.
type ClipContext struct {
	Matrix            [16]float64
	DrawingBufferW    int
	DrawingBufferH    int
	PixelRatio        float64
}

// ScalingOptions bounds how large or small a surface-mode quad may become
// relative to its base pixel size, independent of zoom.
type ScalingOptions struct {
	MetersPerPixel float64
	SpriteMinPixel float64
	SpriteMaxPixel float64
	ZoomScale      float64
}

// metersPerPixelAt returns the ground resolution in meters/pixel at the
// given zoom level and latitude, using the standard Web Mercator formula.
func metersPerPixelAt(zoom, latitude float64) (float64, error) {
	if math.IsNaN(zoom) || math.IsNaN(latitude) {
		return 0, fmt.Errorf("spritelayer: metersPerPixelAt: non-finite input")
	}
	latRad := latitude * math.Pi / 180
	mpp := (math.Cos(latRad) * 2 * math.Pi * earthRadiusMeters) / (256 * math.Pow(2, zoom))
	if mpp <= 0 || math.IsInf(mpp, 0) {
		return 0, fmt.Errorf("spritelayer: metersPerPixelAt: non-positive result")
	}
	return mpp, nil
}

// zoomScaleFactor returns the scalar multiplier applied to surface-mode
// world dimensions: the configured ZoomScale, or 1 when unset. The zoom
// level does not affect the result.
func zoomScaleFactor(zoom float64, opts ScalingOptions) float64 {
	factor := opts.ZoomScale
	if factor <= 0 {
		factor = 1
	}
	return factor
}

// distanceAndBearingMeters returns the great-circle distance in meters and
// the initial bearing in degrees [0,360) from a to b. When a==b, distance
// is 0 and bearing is indeterminate (0 is returned; callers must guard
// using the distance before trusting the bearing).
func distanceAndBearingMeters(a, b Location) (meters, bearingDeg float64) {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinDLat2 := math.Sin(dLat / 2)
	sinDLng2 := math.Sin(dLng / 2)
	h := sinDLat2*sinDLat2 + math.Cos(lat1)*math.Cos(lat2)*sinDLng2*sinDLng2
	h = clamp01(h)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	meters = earthRadiusMeters * c

	if meters == 0 {
		return 0, 0
	}

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	bearingDeg = normalizeDeg(math.Atan2(y, x) * 180 / math.Pi)
	return meters, bearingDeg
}

// applySurfaceDisplacement offsets base by (eastMeters, northMeters) using
// a WGS84 equirectangular approximation, suitable for displacements small
// relative to the earth's radius (sprite quad corners, offsets).
func applySurfaceDisplacement(base Location, eastMeters, northMeters float64) Location {
	latRad := base.Lat * math.Pi / 180
	dLat := (northMeters / earthRadiusMeters) * (180 / math.Pi)
	cosLat := math.Cos(latRad)
	var dLng float64
	if math.Abs(cosLat) > 1e-9 {
		dLng = (eastMeters / (earthRadiusMeters * cosLat)) * (180 / math.Pi)
	}
	return Location{
		Lng: base.Lng + dLng,
		Lat: base.Lat + dLat,
		Alt: base.Alt,
	}
}

// projectLngLatToClip projects a mercator-space point (already produced by
// a ProjectionHost from lng/lat/elevation) through the clip matrix. Returns
// ok=false when w <= clipEpsilon (near/behind the camera plane).
func projectLngLatToClip(m MercatorPoint, ctx ClipContext) (ClipPoint, bool) {
	mat := ctx.Matrix
	x := mat[0]*m.X + mat[4]*m.Y + mat[8]*m.Z + mat[12]
	y := mat[1]*m.X + mat[5]*m.Y + mat[9]*m.Z + mat[13]
	z := mat[2]*m.X + mat[6]*m.Y + mat[10]*m.Z + mat[14]
	w := mat[3]*m.X + mat[7]*m.Y + mat[11]*m.Z + mat[15]
	if w <= clipEpsilon {
		return ClipPoint{}, false
	}
	return ClipPoint{X: x, Y: y, Z: z, W: w}, true
}

// surfaceWorldDimensions computes the world-space size (in meters) of a
// surface-mode quad so that, once rasterised through the current
// projection, its longest screen axis never collapses below spriteMinPixel
// nor exceeds spriteMaxPixel.
func surfaceWorldDimensions(pixelW, pixelH float64, baseMetersPerPixel, imageScale, zoomScale float64, opts ScalingOptions) (widthMeters, heightMeters, scaleAdjustment float64) {
	effectivePixelsPerMeter := zoomScale / baseMetersPerPixel
	if effectivePixelsPerMeter <= 0 || math.IsInf(effectivePixelsPerMeter, 0) {
		effectivePixelsPerMeter = 1
	}

	widthMeters = (pixelW * imageScale) / effectivePixelsPerMeter
	heightMeters = (pixelH * imageScale) / effectivePixelsPerMeter

	longestPixel := pixelW * imageScale
	if pixelH > pixelW {
		longestPixel = pixelH * imageScale
	}

	scaleAdjustment = 1
	if opts.SpriteMinPixel > 0 && longestPixel < opts.SpriteMinPixel {
		scaleAdjustment = opts.SpriteMinPixel / longestPixel
	} else if opts.SpriteMaxPixel > 0 && longestPixel > opts.SpriteMaxPixel {
		scaleAdjustment = opts.SpriteMaxPixel / longestPixel
	}

	widthMeters *= scaleAdjustment
	heightMeters *= scaleAdjustment
	return widthMeters, heightMeters, scaleAdjustment
}

// cornerOrder is the fixed corner ordering shared by surface and billboard
// placement and by the hit-test geometry: top-left, top-right, bottom-right,
// bottom-left.
var cornerOrder = [4]Vec2{
	{X: -0.5, Y: -0.5},
	{X: 0.5, Y: -0.5},
	{X: 0.5, Y: 0.5},
	{X: -0.5, Y: 0.5},
}

// surfaceCornerDisplacements computes the (east,north) meter displacement of
// each of the four corners, relative to the geographic base, given the
// world width/height, anchor (normalized 0..1 within the quad), total
// rotation in degrees, and an offset vector in meters.
func surfaceCornerDisplacements(worldW, worldH float64, anchorX, anchorY, totalRotationDeg float64, offsetEast, offsetNorth float64) [4]Vec2 {
	anchorDX := (0.5 - anchorX) * worldW
	anchorDY := (0.5 - anchorY) * worldH

	var out [4]Vec2
	for i, c := range cornerOrder {
		localX := c.X*worldW + anchorDX
		localY := c.Y * worldH + anchorDY
		rx, ry := rotatePoint(localX, localY, totalRotationDeg)
		out[i] = Vec2{X: rx + offsetEast, Y: -ry + offsetNorth}
	}
	return out
}
