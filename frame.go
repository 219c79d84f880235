package spritelayer

import "math"

// Surface depth-bias tuning. Chosen empirically per the design notes;
// exact values are tunable but monotonicity of the bias in (subLayer,
// order) and the clip-space floor clamp must be preserved.
const (
	orderMax           = 16
	orderBucket        = 16
	epsNDC             = 1e-6
	minClipZEpsilon    = 1e-5
	defaultPixelWidth  = 32
	defaultPixelHeight = 32
)

// advanceChannels steps every sprite's location channel and every image's
// rotation/opacity/offset channels to nowVirtual, returning true if any
// channel is still animating afterward.
func (l *Layer) advanceChannels(nowVirtual float64) bool {
	hasActive := false
	l.store.forEach(func(sp *SpriteState) {
		if _, active := sp.Location.Step(nowVirtual); active {
			hasActive = true
		}
		sp.forEachImage(func(img *ImageState) {
			if _, active := img.FinalRotateDeg.Step(nowVirtual); active {
				hasActive = true
			}
			if _, active := img.FinalOpacity.Step(nowVirtual); active {
				hasActive = true
			}
			if _, active := img.OffsetMeters.Step(nowVirtual); active {
				hasActive = true
			}
			if _, active := img.OffsetDeg.Step(nowVirtual); active {
				hasActive = true
			}
		})
	})
	return hasActive
}

// advanceAutoRotation implements step 2 of the per-frame calculator: when
// a sprite carrying auto-rotating images has moved far enough since its
// last recorded bearing, recompute the bearing and sync every
// participating image's rotation channel to it.
func (l *Layer) advanceAutoRotation(mapHost HostMap) {
	l.store.forEach(func(sp *SpriteState) {
		var minDistance float64 = math.MaxFloat64
		hasAutoRotating := false
		sp.forEachImage(func(img *ImageState) {
			if !img.AutoRotation {
				return
			}
			hasAutoRotating = true
			if img.AutoRotationMinDistanceMeters < minDistance {
				minDistance = img.AutoRotationMinDistanceMeters
			}
		})
		if !hasAutoRotating {
			return
		}

		current := sp.Location.Current()
		if !sp.HasLastAutoRotationLocation {
			sp.LastAutoRotationLocation = current
			sp.HasLastAutoRotationLocation = true
			return
		}

		dist, bearing := distanceAndBearingMeters(sp.LastAutoRotationLocation, current)
		if !sp.AutoRotationInvalidated && dist < minDistance {
			return
		}
		if dist <= 0 && !sp.AutoRotationInvalidated {
			return
		}

		sp.CurrentAutoRotateDeg = bearing
		sp.LastAutoRotationLocation = current
		sp.AutoRotationInvalidated = false
		sp.forEachImage(func(img *ImageState) {
			if img.AutoRotation {
				img.FinalRotateDeg.Commit(normalizeDeg(bearing+img.RotateDeg), nil)
			}
		})
	})
}

// applyVisibilityDistanceLod evaluates sp's per-sprite visibility-distance
// LOD against the host camera's current centre, updating img.LodOpacity and
// recommitting FinalOpacity immediately (no fade band -- the cutoff is a
// hard step, since nothing else in this system specifies a falloff curve
// for it) if the state changed. Returns whether img should still be drawn
// and hit-tested this frame; the image's screen centre is still resolved
// regardless, so origin-chain dependents keep working per I5.
func (l *Layer) applyVisibilityDistanceLod(sp *SpriteState, img *ImageState, spriteLoc Location, mapHost HostMap) bool {
	visible := true
	if sp.VisibilityDistanceMeters != nil {
		dist, _ := distanceAndBearingMeters(mapHost.GetCenter(), spriteLoc)
		visible = dist <= *sp.VisibilityDistanceMeters
	}
	lod := 1.0
	if !visible {
		lod = 0
	}
	if img.LodOpacity != lod {
		img.LodOpacity = lod
		img.FinalOpacity.Commit(img.reapplyOpacity(sp.OpacityMultiplier), nil)
	}
	return visible
}

// polarOffsetMeters converts an (offsetMeters, offsetDeg) polar offset
// into (east, north) meter components, bearing measured clockwise from
// north.
func polarOffsetMeters(meters, bearingDeg float64) (east, north float64) {
	rad := bearingDeg * math.Pi / 180
	return meters * math.Sin(rad), meters * math.Cos(rad)
}

// billboardHalfExtentsPixels computes clamped half-width/height in pixels
// for a billboard-mode quad.
func billboardHalfExtentsPixels(pixelW, pixelH, scale float64, opts ScalingOptions) (halfW, halfH float64) {
	longest := pixelW * scale
	if pixelH*scale > longest {
		longest = pixelH * scale
	}
	adjustment := 1.0
	if opts.SpriteMinPixel > 0 && longest < opts.SpriteMinPixel && longest > 0 {
		adjustment = opts.SpriteMinPixel / longest
	} else if opts.SpriteMaxPixel > 0 && longest > opts.SpriteMaxPixel {
		adjustment = opts.SpriteMaxPixel / longest
	}
	return pixelW * scale * adjustment / 2, pixelH * scale * adjustment / 2
}

// billboardCorners computes the four screen-space corners of a
// billboard-mode quad, in the shared corner order.
func billboardCorners(centre Vec2, halfW, halfH, anchorX, anchorY, rotationDeg, offsetDx, offsetDy float64) [4]Vec2 {
	anchorDX := (0.5 - anchorX) * 2 * halfW
	anchorDY := (0.5 - anchorY) * 2 * halfH

	var out [4]Vec2
	for i, c := range cornerOrder {
		localX := c.X*2*halfW + anchorDX
		localY := c.Y*2*halfH + anchorDY
		rx, ry := rotatePoint(localX, localY, rotationDeg)
		out[i] = Vec2{X: centre.X + rx + offsetDx, Y: centre.Y + ry + offsetDy}
	}
	return out
}

// applyDepthBias nudges clipZ by a bias derived from (subLayer, order) so
// entries drawn later in the vector sort in front, without relying on the
// host's own depth test ordering the batch the same way.
func applyDepthBias(clipZ, clipW float64, subLayer, order int) float64 {
	if order >= orderMax {
		order = orderMax - 1
	}
	biasIndex := subLayer*orderBucket + order
	biased := clipZ - float64(biasIndex)*epsNDC*clipW
	floor := -clipW + minClipZEpsilon
	if biased < floor {
		biased = floor
	}
	return biased
}

// clipToScreen maps a clip-space point to drawing-buffer pixel
// coordinates via perspective division, for surface-mode hit-test corners.
func clipToScreen(c ClipPoint, ctx ClipContext) Vec2 {
	ndcX := c.X / c.W
	ndcY := c.Y / c.W
	pixelRatio := ctx.PixelRatio
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	x := (ndcX*0.5 + 0.5) * float64(ctx.DrawingBufferW) / pixelRatio
	y := (1 - (ndcY*0.5 + 0.5)) * float64(ctx.DrawingBufferH) / pixelRatio
	return Vec2{X: x, Y: y}
}

// Frame is the per-frame calculator (C8): it advances every interpolation
// channel, resolves auto-rotation, projects and places every render-target
// entry (surface or billboard mode, with depth bias in surface mode),
// emits one batched vertex stream, and rebuilds the hit-test index from
// this frame's geometry. It never panics and never blocks; a missing clip
// context degrades to ErrProjectionUnavailable with state preserved.
func (l *Layer) Frame(mapHost HostMap, projHost ProjectionHost, nowWallMs float64) (FrameBatch, error) {
	visible := mapHost.Visible()
	l.scheduler.setVisible(visible, l.store)
	nowVirtual := l.scheduler.advance(nowWallMs)

	batch := FrameBatch{}
	if !visible {
		return batch, nil
	}

	clipCtx, ok := projHost.ClipContext()
	if !ok {
		return batch, ErrProjectionUnavailable
	}

	hasActive := l.advanceChannels(nowVirtual)
	l.advanceAutoRotation(mapHost)

	if target, ok := l.tracking.resolve(l.store); ok {
		mapHost.SetCenter(target.Location)
		if target.HasBearing {
			mapHost.SetBearing(target.BearingDeg)
		}
	}

	l.hitTest.beginFrame()

	n := len(l.renderTargets)
	centres := make([]Vec2, n)
	haveCentre := make([]bool, n)

	zoom := mapHost.GetZoom()

	for i, entry := range l.renderTargets {
		sp, ok := l.store.get(entry.SpriteID)
		if !ok {
			continue
		}
		img, ok := sp.image(entry.SubLayer, entry.Order)
		if !ok {
			continue
		}

		spriteLoc := sp.Location.Current()
		metersPerPixel, err := metersPerPixelAt(zoom, spriteLoc.Lat)
		if err != nil {
			continue
		}
		zoomScale := zoomScaleFactor(zoom, l.options.SpriteScaling)
		effectivePxPerMeter := zoomScale / metersPerPixel

		lodVisible := l.applyVisibilityDistanceLod(sp, img, spriteLoc, mapHost)

		var baseCentre Vec2
		resolvedFromOrigin := false
		if img.HasOrigin && img.OriginRenderTargetIndex != noRenderTargetIndex &&
			img.OriginRenderTargetIndex < i && haveCentre[img.OriginRenderTargetIndex] {
			baseCentre = centres[img.OriginRenderTargetIndex]
			resolvedFromOrigin = true
		}
		if !resolvedFromOrigin {
			screen, ok := mapHost.Project(spriteLoc)
			if !ok {
				continue
			}
			baseCentre = screen
		}
		centres[i] = baseCentre
		haveCentre[i] = true

		pixelW, pixelH := defaultPixelWidth, defaultPixelHeight
		res, hasRes := l.registry.get(img.ImageID)
		if hasRes {
			pixelW, pixelH = int(res.Width), int(res.Height)
		}

		totalRotation := img.FinalRotateDeg.Current()
		offsetEast, offsetNorth := polarOffsetMeters(img.OffsetMeters.Current(), img.OffsetDeg.Current())

		placement := l.atlasManager.PlacementFor(img.ImageID)

		var screenCorners [4]Vec2
		var clipCorners [4]ClipPoint
		drawable := true

		if img.Mode == ModeBillboard {
			halfW, halfH := billboardHalfExtentsPixels(float64(pixelW), float64(pixelH), img.Scale, l.options.SpriteScaling)
			offsetDx := offsetEast * effectivePxPerMeter
			offsetDy := -offsetNorth * effectivePxPerMeter
			screenCorners = billboardCorners(baseCentre, halfW, halfH, img.AnchorX, img.AnchorY, totalRotation, offsetDx, offsetDy)
			for ci, sc := range screenCorners {
				clipCorners[ci] = ClipPoint{X: sc.X, Y: sc.Y, Z: 0, W: 1}
			}
		} else {
			worldW, worldH, _ := surfaceWorldDimensions(float64(pixelW), float64(pixelH), metersPerPixel, img.Scale, zoomScale, l.options.SpriteScaling)
			displacements := surfaceCornerDisplacements(worldW, worldH, img.AnchorX, img.AnchorY, totalRotation, offsetEast, offsetNorth)

			baseLoc := Location{Lng: spriteLoc.Lng, Lat: spriteLoc.Lat, Alt: spriteLoc.Alt}
			if resolvedFromOrigin {
				if originLoc, ok := mapHost.Unproject(baseCentre); ok {
					baseLoc = originLoc
				}
			}

			for ci, d := range displacements {
				cornerLoc := applySurfaceDisplacement(baseLoc, d.X, d.Y)
				mercator := projHost.FromLngLat(cornerLoc)
				clip, ok := projectLngLatToClip(mercator, clipCtx)
				if !ok {
					drawable = false
					break
				}
				clip.Z = applyDepthBias(clip.Z, clip.W, entry.SubLayer, entry.Order)
				clipCorners[ci] = clip
				screenCorners[ci] = clipToScreen(clip, clipCtx)
			}
		}

		if !drawable {
			continue
		}

		img.HasHitTestCorners = true
		img.HitTestCorners = screenCorners

		if lodVisible {
			l.hitTest.registerHitTestEntry(entry.SpriteID, entry.SubLayer, entry.Order, screenCorners, i)

			if placement.PageIndex != unplacedPage {
				emitQuad(&batch, entry.SubLayer, clipCorners, placement.UV)
			}

			img.HitTestAABB = aabbOf(screenCorners)

			l.emitLeaderLine(&batch, img, screenCorners, centres, haveCentre, i)
			l.emitBorder(&batch, img, screenCorners, effectivePxPerMeter)
		}
	}

	batch.HasActiveInterpolation = hasActive
	if hasActive {
		l.scheduler.requestRedraw()
	}
	return batch, nil
}

func quadCentre(corners [4]Vec2) Vec2 {
	var sum Vec2
	for _, c := range corners {
		sum.X += c.X
		sum.Y += c.Y
	}
	return Vec2{X: sum.X / 4, Y: sum.Y / 4}
}

func (l *Layer) emitLeaderLine(batch *FrameBatch, img *ImageState, screenCorners [4]Vec2, centres []Vec2, haveCentre []bool, selfIdx int) {
	if img.LeaderLine == nil || !img.HasOrigin {
		return
	}
	idx := img.OriginRenderTargetIndex
	if idx == noRenderTargetIndex || idx < 0 || idx >= len(centres) || !haveCentre[idx] {
		return
	}
	from := quadCentre(screenCorners)
	to := centres[idx]
	col := img.LeaderLine.Color
	col.A = clamp01(col.A * img.LeaderLine.Opacity)
	batch.LeaderLines = append(batch.LeaderLines,
		LineVertex{X: float32(from.X), Y: float32(from.Y), Color: col},
		LineVertex{X: float32(to.X), Y: float32(to.Y), Color: col},
	)
}

// emitBorder appends one line-vertex pair per edge of an image's quad,
// carrying the border's pixel width (computed from its meter width and the
// effective pixels-per-meter at this image's location) so the host's
// outline pass can stroke it consistently with surface-mode scaling.
func (l *Layer) emitBorder(batch *FrameBatch, img *ImageState, screenCorners [4]Vec2, effectivePxPerMeter float64) {
	if img.Border == nil {
		return
	}
	col := img.Border.Color
	width := float32(img.Border.WidthMeters * effectivePxPerMeter)
	for i := 0; i < 4; i++ {
		a := screenCorners[i]
		b := screenCorners[(i+1)%4]
		batch.Borders = append(batch.Borders,
			LineVertex{X: float32(a.X), Y: float32(a.Y), Color: col, Width: width},
			LineVertex{X: float32(b.X), Y: float32(b.Y), Color: col, Width: width},
		)
	}
}
