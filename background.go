package punkrun

import (
	"strconv"

	"github.com/pkg/errors"
)

// VariantID selects one art variant of a background layer.
type VariantID uint16

// maxInUse bounds the ring of recently shown variants.
const maxInUse = 4

// speedOne is the fixed-point scale of layer speeds: a speed of speedOne
// scrolls one row per unit of scroll position.
const speedOne = 256

// Strip is one contiguous band of a background buffer. Height is the number
// of rows the band covers and always equals the view height.
type Strip struct {
	View
	Height int32
}

// BackgroundAnimation streams one parallax layer. It keeps two full-height
// pixel buffers; the scroll position selects which buffer is ahead and where
// the row split between them falls, so the visible strip is composed of two
// bands without ever copying a whole buffer.
//
// Variants exist as decoded index masks. Only the two buffers hold
// materialized pixels. Recently shown variants sit in a FIFO ring and are not
// eligible for selection until they age out into the available pool.
type BackgroundAnimation struct {
	name   string
	index  int
	speed  uint32
	width  int32
	height int32

	buffers       [2]Bitmap
	bufferVariant [2]VariantID

	masks []Mask
	alpha Mask
	table ColorTable

	inUse     []VariantID
	head      int // oldest entry of inUse
	available []VariantID

	cycle  int64
	primed bool
	debug  debugFlag
}

// LayerVariants counts the consecutive "<name>_<k>" entries of l and returns
// their dimensions. It reports false when the layer has no variants.
func LayerVariants(l *Layout, name string) (n int, width, height int32, ok bool) {
	for {
		e, found := l.Entry(variantName(name, VariantID(n)))
		if !found {
			break
		}
		if n == 0 {
			width, height = e.Width, e.Height
		}
		n++
	}
	return n, width, height, n > 0
}

func variantName(layer string, v VariantID) string {
	return layer + "_" + strconv.Itoa(int(v))
}

// DeclareBackground reserves arena space for a layer of the given
// dimensions and variant count.
func DeclareBackground(a *Arena, width, height int32, variants int) {
	DeclareBitmap(a, width, height)
	DeclareBitmap(a, width, height)
	DeclareMask(a, width, height)
	for range variants {
		DeclareMask(a, width, height)
	}
	AddCount[VariantID](a, variants)
}

// NewBackgroundAnimation carves a layer out of the arena. speed is in
// 1/256ths of a row per unit of scroll position.
func NewBackgroundAnimation(a *Arena, name string, index int, speed uint32, width, height int32, variants int) (*BackgroundAnimation, bool) {
	if variants <= 0 || width <= 0 || height <= 0 {
		return nil, false
	}
	b := &BackgroundAnimation{name: name, index: index, speed: speed, width: width, height: height, cycle: -1, debug: a.debug}
	for i := range b.buffers {
		buf, ok := AllocBitmap(a, width, height)
		if !ok {
			return nil, false
		}
		b.buffers[i] = buf
	}
	alpha, ok := AllocMask(a, width, height)
	if !ok {
		return nil, false
	}
	b.alpha = alpha
	b.masks = make([]Mask, variants)
	for i := range b.masks {
		m, ok := AllocMask(a, width, height)
		if !ok {
			return nil, false
		}
		b.masks[i] = m
	}
	ids, ok := Push[VariantID](a, variants)
	if !ok {
		return nil, false
	}

	ring := min(maxInUse, variants-1)
	for i := range ids {
		ids[i] = VariantID(i)
	}
	b.inUse = ids[:ring]
	b.available = ids[ring:]
	b.bufferVariant = [2]VariantID{0, VariantID(min(1, variants-1))}
	return b, true
}

// Name returns the layer name used to look up its assets.
func (b *BackgroundAnimation) Name() string { return b.name }

// Index returns the layer's position in draw order.
func (b *BackgroundAnimation) Index() int { return b.index }

// Height returns the full layer height in rows.
func (b *BackgroundAnimation) Height() int32 { return b.height }

// Width returns the layer width in columns.
func (b *BackgroundAnimation) Width() int32 { return b.width }

// Variants returns the number of art variants.
func (b *BackgroundAnimation) Variants() int { return len(b.masks) }

// InUse returns the ring of recently shown variants, oldest first.
func (b *BackgroundAnimation) InUse() []VariantID {
	out := make([]VariantID, 0, len(b.inUse))
	for i := range b.inUse {
		out = append(out, b.inUse[(b.head+i)%len(b.inUse)])
	}
	return out
}

// Available returns the variants eligible for the next selection.
func (b *BackgroundAnimation) Available() []VariantID {
	return append([]VariantID(nil), b.available...)
}

// BufferVariant returns the variant materialized in buffer i.
func (b *BackgroundAnimation) BufferVariant(i int) VariantID {
	return b.bufferVariant[i&1]
}

// Primed reports whether both buffers hold pixels.
func (b *BackgroundAnimation) Primed() bool { return b.primed }

// scroll maps a scroll position to the layer's cycle and row split.
func (b *BackgroundAnimation) scroll(pos int32) (cycle int64, split int32) {
	if pos < 0 {
		pos = 0
	}
	scaled := int64(pos) * int64(b.speed) / speedOne
	h := int64(b.height)
	return scaled / h, int32(scaled % h)
}

// AnimationPair returns the two bands that make up the visible layer at
// pos. The first band comes from the ahead buffer starting at the split row;
// the second continues from the top of the other buffer. Their heights
// always sum to the layer height, and the ahead buffer alternates once per
// layer height of scrolled distance.
func (b *BackgroundAnimation) AnimationPair(pos int32) [2]Strip {
	cycle, split := b.scroll(pos)
	ahead := int(cycle % 2)
	first := &b.buffers[ahead]
	second := &b.buffers[1-ahead]
	return [2]Strip{
		{View: View{Bitmap: first, Rect: Rect{Y: split, W: b.width, H: b.height - split}}, Height: b.height - split},
		{View: View{Bitmap: second, Rect: Rect{W: b.width, H: split}}, Height: split},
	}
}

// Advance records the scroll position for this tick. When a new cycle
// begins it selects the next variant and returns the decode that refreshes
// the buffer now trailing behind the split. A position behind the current
// cycle re-bases the layer without streaming.
func (b *BackgroundAnimation) Advance(pos int32, rng *RandomRing) (LoadCommand, bool) {
	cycle, _ := b.scroll(pos)
	if b.cycle < 0 || cycle < b.cycle {
		b.cycle = cycle
		return LoadCommand{}, false
	}
	if cycle == b.cycle {
		return LoadCommand{}, false
	}
	b.cycle = cycle
	v := b.nextVariant(rng)
	stale := 1 - int(cycle%2)
	return LoadCommand{Layer: b.index, Variant: v, Buffer: stale}, true
}

// nextVariant picks uniformly from the available pool and rotates the pick
// into the ring, returning the oldest ring entry to the pool.
func (b *BackgroundAnimation) nextVariant(rng *RandomRing) VariantID {
	if len(b.available) == 0 {
		return 0
	}
	i := rng.IntN(len(b.available))
	pick := b.available[i]
	if len(b.inUse) == 0 {
		return pick
	}
	b.available[i] = b.inUse[b.head]
	b.inUse[b.head] = pick
	b.head = (b.head + 1) % len(b.inUse)
	return pick
}

// Prime decodes the layer's color table, alpha filter and every variant mask
// from the resident blob, then materializes both buffers.
func (b *BackgroundAnimation) Prime(assets *AssetData) error {
	if res := assets.ReadTable(b.name+"_table", &b.table); res != ReadOK {
		return errors.Wrapf(ErrAssetRead, "layer %s table: %s", b.name, res)
	}
	if res := assets.ReadMask(b.name+"_alpha", &b.alpha); res != ReadOK {
		return errors.Wrapf(ErrAssetRead, "layer %s alpha: %s", b.name, res)
	}
	for i := range b.masks {
		name := variantName(b.name, VariantID(i))
		if res := assets.ReadMask(name, &b.masks[i]); res != ReadOK {
			return errors.Wrapf(ErrAssetRead, "layer %s variant %s: %s", b.name, name, res)
		}
	}
	b.materialize(0, b.bufferVariant[0])
	b.materialize(1, b.bufferVariant[1])
	b.primed = true
	return nil
}

// materialize expands variant v into buffer i: each mask index is looked up
// in the color table and its alpha scaled by the layer's alpha filter.
func (b *BackgroundAnimation) materialize(i int, v VariantID) {
	if int(v) >= len(b.masks) {
		b.debug.assert(false, "layer %s: variant %d out of range", b.name, v)
		return
	}
	dst := b.buffers[i&1].Pix
	idx := b.masks[v].Pix
	alpha := b.alpha.Pix
	for j := range dst {
		p := b.table[idx[j]]
		p.A = mul8(p.A, alpha[j])
		dst[j] = p
	}
	b.bufferVariant[i&1] = v
}
