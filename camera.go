package punkrun

// desyncExtents bounds how far, in background extents, a bitmap may sit from
// the camera before DeltaPosScene flags a desync.
const desyncExtents = 10

// SceneCamera is the view into the scene. Its position is the scene-space
// top-left of the visible area and is always clamped so the view stays
// inside the scene.
type SceneCamera struct {
	pos        ScenePos
	view       Extent // visible area in scene pixels
	scene      Extent // total scrollable scene
	background Extent // reference extent for the desync guard
	debug      debugFlag
}

// NewSceneCamera creates a camera at the scene origin. background is the
// extent of one background layer and scales the desync guard.
func NewSceneCamera(view, scene, background Extent) SceneCamera {
	return SceneCamera{view: view, scene: scene, background: background, debug: debugFlag(defaultDebug)}
}

// Position returns the clamped scene position of the view's top-left.
func (c *SceneCamera) Position() ScenePos {
	return c.pos
}

// View returns the visible extent.
func (c *SceneCamera) View() Extent {
	return c.view
}

// Bounds returns the visible area as a scene-space rect.
func (c *SceneCamera) Bounds() Rect {
	return Rect{X: c.pos.X(), Y: c.pos.Y(), W: c.view.W, H: c.view.H}
}

// Move translates the camera by (dx, dy) and clamps.
func (c *SceneCamera) Move(dx, dy int32) {
	c.pos = c.pos.Add(dx, dy)
	c.clampToBounds()
}

// MoveTo places the camera at p and clamps.
func (c *SceneCamera) MoveTo(p ScenePos) {
	c.pos = p
	c.clampToBounds()
}

// clampToBounds restricts each axis to [0, scene - view]. If the scene is
// smaller than the view on an axis, that axis is pinned to 0.
func (c *SceneCamera) clampToBounds() {
	c.pos.A = clampAxis(c.pos.A, c.scene.W-c.view.W)
	c.pos.B = clampAxis(c.pos.B, c.scene.H-c.view.H)
}

func clampAxis(v, hi int32) int32 {
	if hi < 0 {
		hi = 0
	}
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

// DeltaPosScene returns p relative to the camera in scene space. In debug
// mode it asserts the offset is within ten background extents on each axis,
// which catches entities that stopped tracking the camera.
func (c *SceneCamera) DeltaPosScene(p ScenePos) ScenePos {
	d := p.Sub(c.pos)
	c.debug.assert(abs32(d.X()) <= desyncExtents*max(c.background.W, c.view.W),
		"camera desync: x offset %d", d.X())
	c.debug.assert(abs32(d.Y()) <= desyncExtents*max(c.background.H, c.view.H),
		"camera desync: y offset %d", d.Y())
	return d
}

// DeltaPosPx returns p relative to the camera as a bitmap-oriented pixel
// offset, ready for DrawQueue.PushDrawView.
func (c *SceneCamera) DeltaPosPx(p ScenePos) GamePos {
	return SceneToGame(c.DeltaPosScene(p))
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
