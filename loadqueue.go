package punkrun

// LoadCommand materializes one background variant into one of its layer's
// buffers.
type LoadCommand struct {
	Layer   int
	Variant VariantID
	Buffer  int
}

// LoadQueue holds at most one pending decode per background layer. It is
// filled during the update phase and drained by LoadAll after the frame is
// composited.
type LoadQueue struct {
	pending []LoadCommand
	set     []bool
	debug   debugFlag
}

// NewLoadQueue creates a queue for the given number of layers.
func NewLoadQueue(layers int) *LoadQueue {
	return &LoadQueue{pending: make([]LoadCommand, layers), set: make([]bool, layers), debug: debugFlag(defaultDebug)}
}

// Enqueue records cmd for its layer. A second command for the same layer in
// one tick replaces the first; it reports false in that case or when the
// layer is out of range.
func (q *LoadQueue) Enqueue(cmd LoadCommand) bool {
	if cmd.Layer < 0 || cmd.Layer >= len(q.pending) {
		q.debug.assert(false, "load queue: layer %d out of range", cmd.Layer)
		return false
	}
	replaced := q.set[cmd.Layer]
	q.debug.assert(!replaced, "load queue: layer %d already has a pending decode", cmd.Layer)
	q.pending[cmd.Layer] = cmd
	q.set[cmd.Layer] = true
	return !replaced
}

// Len returns the number of pending commands.
func (q *LoadQueue) Len() int {
	n := 0
	for _, s := range q.set {
		if s {
			n++
		}
	}
	return n
}

// Pending returns the pending command for layer, if any.
func (q *LoadQueue) Pending(layer int) (LoadCommand, bool) {
	if layer < 0 || layer >= len(q.pending) || !q.set[layer] {
		return LoadCommand{}, false
	}
	return q.pending[layer], true
}

// LoadAll executes every pending decode against layers and clears the
// queue. It returns the executed commands in layer order, reusing buf.
func (q *LoadQueue) LoadAll(layers []*BackgroundAnimation, buf []LoadCommand) []LoadCommand {
	buf = buf[:0]
	for i, s := range q.set {
		if !s {
			continue
		}
		cmd := q.pending[i]
		q.set[i] = false
		if cmd.Layer >= len(layers) || layers[cmd.Layer] == nil {
			continue
		}
		layers[cmd.Layer].materialize(cmd.Buffer, cmd.Variant)
		buf = append(buf, cmd)
	}
	return buf
}
