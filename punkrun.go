package punkrun

// Pixel is a straight-alpha RGBA color with 8 bits per channel. It is four
// bytes and pointer-free, so pixel storage can be carved out of an Arena.
type Pixel struct {
	R, G, B, A uint8
}

var (
	// PixelTransparent is fully transparent black.
	PixelTransparent = Pixel{}
	// PixelMagenta marks placeholder content for missing asset entries.
	PixelMagenta = Pixel{R: 255, G: 0, B: 255, A: 255}
)

// Vec2 is a 2D vector used for sprite velocities, in scene pixels per tick.
type Vec2 struct {
	X, Y float32
}

// Rect is an integer axis-aligned rectangle. The origin is the top-left and
// Y grows downward. Rects are half-open: X+W and Y+H are outside.
type Rect struct {
	X, Y, W, H int32
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Right returns the exclusive right edge.
func (r Rect) Right() int32 { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int32 { return r.Y + r.H }

// Contains reports whether the pixel (x, y) lies inside r.
func (r Rect) Contains(x, y int32) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Intersect returns the overlap of r and other. The zero Rect is returned
// when they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.Right(), other.Right())
	y1 := min(r.Bottom(), other.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Intersects reports whether r and other share at least one pixel.
// Unlike float rectangles, adjacent rects do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return !r.Intersect(other).Empty()
}

// GameMode is the top-level state of the game state machine.
type GameMode uint8

const (
	ModeTitle    GameMode = iota // waiting for assets, then for the action input
	ModeGameplay                 // the runner is running
	ModeError                    // terminal; a load or decode failed
)

func (m GameMode) String() string {
	switch m {
	case ModeTitle:
		return "title"
	case ModeGameplay:
		return "gameplay"
	case ModeError:
		return "error"
	default:
		return "unknown"
	}
}

// EventType identifies a kind of GameEvent.
type EventType uint8

const (
	EventModeChanged    EventType = iota // Mode holds the new mode
	EventAssetStatus                     // Status holds the new asset status
	EventLayerStreamed                   // Layer and Variant hold the decoded variant
	EventObstacleHit                     // the runner collided with an obstacle
)

// GameEvent carries state-machine and streaming notifications to an
// optional EventSink.
type GameEvent struct {
	Type    EventType
	Tick    GameTick
	Mode    GameMode
	Status  AssetStatus
	Layer   int
	Variant VariantID
}

// EventSink is the interface for optional ECS integration. When set on a
// Game, state transitions are forwarded to the sink.
type EventSink interface {
	EmitEvent(event GameEvent)
}
