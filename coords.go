package punkrun

// Coord is the canonical storage for every 2D integer position. The frame a
// position belongs to is expressed by its named type, and each frame reads
// the same pair through its own accessors; converting between frames never
// moves the numbers.
//
// The game is authored in a transposed orientation relative to the device:
// bitmaps are stored with the device's horizontal (scroll) axis as rows. So a
// ScenePos (x along the scroll axis) read as a GamePos yields the bitmap
// column in X and the bitmap row in Y without any copy.
type Coord struct {
	A, B int32
}

// GamePos is a position in authoring (bitmap) orientation: X is the column,
// Y is the row.
type GamePos Coord

// NewGamePos builds a GamePos from a column and a row.
func NewGamePos(x, y int32) GamePos { return GamePos{A: y, B: x} }

// X returns the bitmap column.
func (p GamePos) X() int32 { return p.B }

// Y returns the bitmap row.
func (p GamePos) Y() int32 { return p.A }

// ScenePos is a signed offset from the world origin in device orientation:
// X runs along the scroll axis, Y runs down.
type ScenePos Coord

// NewScenePos builds a ScenePos from device-oriented x and y.
func NewScenePos(x, y int32) ScenePos { return ScenePos{A: x, B: y} }

// X returns the scroll-axis offset.
func (p ScenePos) X() int32 { return p.A }

// Y returns the vertical offset.
func (p ScenePos) Y() int32 { return p.B }

// Add returns p translated by (dx, dy).
func (p ScenePos) Add(dx, dy int32) ScenePos {
	return ScenePos{A: p.A + dx, B: p.B + dy}
}

// Sub returns the component-wise difference p - o.
func (p ScenePos) Sub(o ScenePos) ScenePos {
	return ScenePos{A: p.A - o.A, B: p.B - o.B}
}

// ScreenPos is an unsigned device pixel position.
type ScreenPos Coord

// X returns the device column.
func (p ScreenPos) X() uint32 { return uint32(p.A) }

// Y returns the device row.
func (p ScreenPos) Y() uint32 { return uint32(p.B) }

// SceneToGame reinterprets a scene-space offset in bitmap orientation.
func SceneToGame(p ScenePos) GamePos { return GamePos(p) }

// GameToScene reinterprets a bitmap-oriented offset in scene space.
func GameToScene(p GamePos) ScenePos { return ScenePos(p) }

// SceneToScreen converts a scene position to device pixels relative to the
// camera origin. ok is false when the result is off the negative edges.
func SceneToScreen(p, camera ScenePos) (s ScreenPos, ok bool) {
	d := p.Sub(camera)
	if d.A < 0 || d.B < 0 {
		return ScreenPos{}, false
	}
	return ScreenPos(d), true
}

// ScreenToScene converts a device pixel to a scene position.
func ScreenToScene(s ScreenPos, camera ScenePos) ScenePos {
	return ScenePos{A: camera.A + int32(s.A), B: camera.B + int32(s.B)}
}

// Extent is a width and height in device orientation.
type Extent struct {
	W, H int32
}

// GameWidth returns the number of bitmap columns an extent spans.
func (e Extent) GameWidth() int32 { return e.H }

// GameHeight returns the number of bitmap rows an extent spans.
func (e Extent) GameHeight() int32 { return e.W }

// ExtentFromGame builds a device-oriented extent from bitmap dimensions.
func ExtentFromGame(columns, rows int32) Extent {
	return Extent{W: rows, H: columns}
}
