package punkrun

// DrawCommand is one clipped blit: the SrcRect pixels of the source bitmap
// composited onto the DstRect pixels of the destination.
type DrawCommand struct {
	SrcRect Rect
	DstRect Rect
	Opacity uint8

	src *Bitmap
	dst *Bitmap
}

// DrawQueue is a fixed-capacity list of draw commands rebuilt every tick.
// Commands are composited in push order; there is no sorting.
//
// The command slice is a regular heap allocation rather than arena memory
// because commands reference bitmaps by pointer.
type DrawQueue struct {
	commands []DrawCommand
	dropped  int
	debug    debugFlag
}

// NewDrawQueue creates a queue that holds up to capacity commands.
func NewDrawQueue(capacity int) *DrawQueue {
	return &DrawQueue{commands: make([]DrawCommand, 0, capacity), debug: debugFlag(defaultDebug)}
}

// Reset empties the queue. Called at the start of every tick.
func (q *DrawQueue) Reset() {
	q.commands = q.commands[:0]
	q.dropped = 0
}

// Len returns the number of queued commands.
func (q *DrawQueue) Len() int { return len(q.commands) }

// Cap returns the fixed capacity.
func (q *DrawQueue) Cap() int { return cap(q.commands) }

// Dropped returns how many pushes overflowed the queue this tick.
// Only non-zero in release mode; debug mode panics instead.
func (q *DrawQueue) Dropped() int { return q.dropped }

// Commands returns the queued commands. The returned slice MUST NOT be mutated.
func (q *DrawQueue) Commands() []DrawCommand { return q.commands }

// PushDrawView queues src to be drawn onto dst with its top-left at offset
// (bitmap orientation). The placement is clipped against dst; a placement
// entirely outside dst queues nothing. It reports whether a command was
// queued.
func (q *DrawQueue) PushDrawView(src View, dst *Bitmap, offset GamePos) bool {
	return q.PushDrawViewAlpha(src, dst, offset, 255)
}

// PushDrawViewAlpha is PushDrawView with the source alpha scaled by opacity.
func (q *DrawQueue) PushDrawViewAlpha(src View, dst *Bitmap, offset GamePos, opacity uint8) bool {
	q.debug.assert(src.Bitmap != nil, "PushDrawView with uninitialized source view")
	q.debug.assert(dst != nil, "PushDrawView with nil destination")
	if !src.Valid() || dst == nil || opacity == 0 {
		return false
	}

	placement := Rect{X: offset.X(), Y: offset.Y(), W: src.Rect.W, H: src.Rect.H}
	clip := placement.Intersect(dst.Bounds())
	if clip.Empty() {
		return false
	}

	if len(q.commands) == cap(q.commands) {
		q.debug.assert(false, "draw queue overflow (capacity %d)", cap(q.commands))
		q.dropped++
		return false
	}

	dx := clip.X - placement.X
	dy := clip.Y - placement.Y
	q.commands = append(q.commands, DrawCommand{
		SrcRect: Rect{X: src.Rect.X + dx, Y: src.Rect.Y + dy, W: clip.W, H: clip.H},
		DstRect: clip,
		Opacity: opacity,
		src:     src.Bitmap,
		dst:     dst,
	})
	return true
}

// Draw composites every queued command in order.
func (q *DrawQueue) Draw() {
	for i := range q.commands {
		cmd := &q.commands[i]
		composite(cmd.dst, cmd.DstRect, cmd.src, cmd.SrcRect, cmd.Opacity)
	}
}
