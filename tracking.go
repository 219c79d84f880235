package spritelayer

// spriteTracking binds a sprite as the host camera's focal target,
// grounded directly on the teacher's Camera.Follow/Unfollow binding --
// unlike the teacher's lerp-smoothed follow, the spec's tracking contract
// centres the camera on the sprite's current location every frame with no
// smoothing of its own (the sprite's own location channel already
// animates).
type spriteTracking struct {
	spriteId      string
	tracking      bool
	trackRotation bool
	// bearingImage, when set, names the image whose rotateDeg is added to
	// the sprite's currentAutoRotateDeg to produce the camera bearing.
	bearingImage    ImageRef
	hasBearingImage bool
}

// trackSprite nominates id as the camera's focal target. trackRotation, if
// true, also drives the host camera's bearing each frame. bearingImage, if
// non-nil, names the image whose rotateDeg is added to the sprite's
// currentAutoRotateDeg to produce that bearing; if nil, the bearing is the
// sprite's currentAutoRotateDeg alone.
func (t *spriteTracking) trackSprite(id string, trackRotation bool, bearingImage *ImageRef) {
	t.spriteId = id
	t.tracking = true
	t.trackRotation = trackRotation
	t.hasBearingImage = bearingImage != nil
	if bearingImage != nil {
		t.bearingImage = *bearingImage
	} else {
		t.bearingImage = ImageRef{}
	}
}

// untrackSprite releases the current binding.
func (t *spriteTracking) untrackSprite() {
	t.tracking = false
	t.spriteId = ""
}

// cameraTarget is what the per-frame calculator hands the host camera:
// the location to centre on and, optionally, a bearing to set.
type cameraTarget struct {
	Location    Location
	HasBearing  bool
	BearingDeg  float64
}

// resolve computes this frame's camera target from the store, or reports
// ok=false if no sprite is tracked or the tracked sprite no longer exists.
func (t *spriteTracking) resolve(store *spriteStore) (cameraTarget, bool) {
	if !t.tracking {
		return cameraTarget{}, false
	}
	sp, ok := store.get(t.spriteId)
	if !ok {
		return cameraTarget{}, false
	}

	target := cameraTarget{Location: sp.Location.Current()}
	if t.trackRotation {
		bearing := sp.CurrentAutoRotateDeg
		if t.hasBearingImage {
			if img, ok := sp.image(t.bearingImage.SubLayer, t.bearingImage.Order); ok {
				bearing += img.RotateDeg
			}
		}
		target.HasBearing = true
		target.BearingDeg = normalizeDeg(bearing)
	}
	return target, true
}
