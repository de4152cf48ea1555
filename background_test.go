package punkrun

import (
	"fmt"
	"strings"
	"testing"
)

const (
	testLayerW = 4
	testLayerH = 8
)

// testLayerLayout builds a layout with one background layer "bg" of the
// given variant count.
func testLayerLayout(t *testing.T, variants int) *Layout {
	t.Helper()
	var b strings.Builder
	b.WriteString("version: 3\nentries:\n")
	fmt.Fprintf(&b, "  - {name: bg_table, class: table4, width: 256, height: 1}\n")
	fmt.Fprintf(&b, "  - {name: bg_alpha, class: filter_alpha, width: %d, height: %d}\n", testLayerW, testLayerH)
	for i := 0; i < variants; i++ {
		fmt.Fprintf(&b, "  - {name: bg_%d, class: filter_table, width: %d, height: %d}\n", i, testLayerW, testLayerH)
	}
	l, err := ParseLayout([]byte(b.String()))
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	return l
}

// testLayerAssets makes variant k's mask hold the value 10*k+row, the table
// map index i to red i, and the alpha filter opaque.
func testLayerAssets(t *testing.T, l *Layout) *AssetData {
	t.Helper()
	blob := BuildBlob(l, func(e LayoutEntry, raw []byte) {
		switch {
		case e.Name == "bg_table":
			for i := 0; i < 256; i++ {
				raw[4*i], raw[4*i+3] = uint8(i), 255
			}
		case e.Name == "bg_alpha":
			for i := range raw {
				raw[i] = 255
			}
		default:
			var k int
			fmt.Sscanf(e.Name, "bg_%d", &k)
			for i := range raw {
				raw[i] = uint8(10*k + i/int(e.Width))
			}
		}
	})
	d := NewAssetData(l)
	if st := d.SetResident(blob); st != AssetSuccess {
		t.Fatalf("SetResident = %s: %v", st, d.Err())
	}
	return d
}

func newTestLayer(t *testing.T, variants int, speed uint32) *BackgroundAnimation {
	t.Helper()
	l := testLayerLayout(t, variants)
	n, w, h, ok := LayerVariants(l, "bg")
	if !ok || n != variants || w != testLayerW || h != testLayerH {
		t.Fatalf("LayerVariants = %d %dx%d %v", n, w, h, ok)
	}
	a := newTestArena(t, func(a *Arena) { DeclareBackground(a, w, h, n) })
	layer, ok := NewBackgroundAnimation(a, "bg", 0, speed, w, h, n)
	if !ok {
		t.Fatal("NewBackgroundAnimation failed")
	}
	if err := layer.Prime(testLayerAssets(t, l)); err != nil {
		t.Fatalf("Prime: %v", err)
	}
	return layer
}

func TestAnimationPairHeightsSumToLayerHeight(t *testing.T) {
	layer := newTestLayer(t, 8, speedOne)
	for pos := int32(0); pos < 2*testLayerH; pos++ {
		pair := layer.AnimationPair(pos)
		if got := pair[0].Height + pair[1].Height; got != testLayerH {
			t.Errorf("pos %d: heights %d + %d = %d, want %d", pos, pair[0].Height, pair[1].Height, got, testLayerH)
		}
		if pair[0].Rect.H != pair[0].Height || pair[1].Rect.H != pair[1].Height {
			t.Errorf("pos %d: view rects disagree with heights", pos)
		}
	}
}

func TestAnimationPairAheadFlipsOncePerHeight(t *testing.T) {
	for _, speed := range []uint32{speedOne, speedOne / 2, speedOne * 2} {
		layer := newTestLayer(t, 8, speed)
		span := int32(testLayerH * speedOne / int(speed))
		flips := 0
		prev := layer.AnimationPair(0)[0].Bitmap
		for pos := int32(1); pos < 2*span; pos++ {
			cur := layer.AnimationPair(pos)[0].Bitmap
			if cur != prev {
				flips++
				if pos != span {
					t.Errorf("speed %d: ahead flipped at pos %d, want %d", speed, pos, span)
				}
			}
			prev = cur
		}
		if flips != 1 {
			t.Errorf("speed %d: %d flips over two heights, want 1", speed, flips)
		}
	}
}

func TestAnimationPairSplit(t *testing.T) {
	layer := newTestLayer(t, 8, speedOne)
	pair := layer.AnimationPair(3)
	if pair[0].Rect.Y != 3 || pair[0].Height != 5 {
		t.Errorf("first strip = row %d height %d, want row 3 height 5", pair[0].Rect.Y, pair[0].Height)
	}
	if pair[1].Rect.Y != 0 || pair[1].Height != 3 {
		t.Errorf("second strip = row %d height %d, want row 0 height 3", pair[1].Rect.Y, pair[1].Height)
	}
	if pair[0].Bitmap == pair[1].Bitmap {
		t.Error("both strips come from the same buffer")
	}
	if neg := layer.AnimationPair(-5); neg[0].Height != testLayerH {
		t.Errorf("negative position: first height %d, want %d", neg[0].Height, testLayerH)
	}
}

func TestPrimeMaterializesBuffers(t *testing.T) {
	layer := newTestLayer(t, 8, speedOne)
	if !layer.Primed() {
		t.Fatal("layer not primed")
	}
	// Buffer 0 holds variant 0, buffer 1 variant 1; red equals the mask value.
	for i, v := range []VariantID{0, 1} {
		if layer.BufferVariant(i) != v {
			t.Errorf("buffer %d variant = %d, want %d", i, layer.BufferVariant(i), v)
		}
		p := layer.buffers[i].At(0, 5)
		if want := uint8(10*int(v) + 5); p.R != want || p.A != 255 {
			t.Errorf("buffer %d row 5 = %+v, want R %d", i, p, want)
		}
	}
}

func TestAdvanceStreamsStaleBuffer(t *testing.T) {
	layer := newTestLayer(t, 8, speedOne)
	rng := NewRandomRing(16, 3)

	if _, ok := layer.Advance(0, rng); ok {
		t.Fatal("first Advance requested a decode")
	}
	if _, ok := layer.Advance(testLayerH-1, rng); ok {
		t.Fatal("Advance within the first cycle requested a decode")
	}
	before := layer.Available()
	cmd, ok := layer.Advance(testLayerH+2, rng)
	if !ok {
		t.Fatal("crossing a cycle did not request a decode")
	}
	pair := layer.AnimationPair(testLayerH + 2)
	if stale := &layer.buffers[cmd.Buffer]; pair[1].Bitmap != stale {
		t.Error("decode does not target the trailing buffer")
	}
	found := false
	for _, v := range before {
		if v == cmd.Variant {
			found = true
		}
	}
	if !found {
		t.Errorf("picked variant %d was not available (%v)", cmd.Variant, before)
	}
	if _, ok := layer.Advance(testLayerH+3, rng); ok {
		t.Error("second Advance in the same cycle requested a decode")
	}
}

func TestAdvanceBackwardsRebasesWithoutDecode(t *testing.T) {
	layer := newTestLayer(t, 8, speedOne)
	rng := NewRandomRing(16, 3)
	layer.Advance(0, rng)
	layer.Advance(3*testLayerH, rng)
	if _, ok := layer.Advance(testLayerH, rng); ok {
		t.Fatal("moving back a cycle requested a decode")
	}
	if _, ok := layer.Advance(testLayerH+1, rng); ok {
		t.Error("Advance within the re-based cycle requested a decode")
	}
	if _, ok := layer.Advance(2*testLayerH, rng); !ok {
		t.Error("crossing forward after a re-base did not request a decode")
	}
}

func TestVariantPoolsStayPartitioned(t *testing.T) {
	layer := newTestLayer(t, 8, speedOne)
	rng := NewRandomRing(64, 11)
	layer.Advance(0, rng)
	for cycle := int32(1); cycle <= 40; cycle++ {
		cmd, ok := layer.Advance(cycle*testLayerH, rng)
		if !ok {
			t.Fatalf("cycle %d: no decode", cycle)
		}
		inUse := layer.InUse()
		if len(inUse) != maxInUse {
			t.Fatalf("ring size = %d, want %d", len(inUse), maxInUse)
		}
		if inUse[len(inUse)-1] != cmd.Variant {
			t.Errorf("cycle %d: newest ring entry %d, want picked %d", cycle, inUse[len(inUse)-1], cmd.Variant)
		}
		seen := make(map[VariantID]int)
		for _, v := range inUse {
			seen[v]++
		}
		for _, v := range layer.Available() {
			seen[v]++
		}
		if len(seen) != 8 {
			t.Fatalf("cycle %d: pools cover %d variants, want 8", cycle, len(seen))
		}
		for v, n := range seen {
			if n != 1 {
				t.Errorf("cycle %d: variant %d appears %d times", cycle, v, n)
			}
		}
	}
}

func TestSingleVariantLayer(t *testing.T) {
	layer := newTestLayer(t, 1, speedOne)
	rng := NewRandomRing(4, 1)
	layer.Advance(0, rng)
	cmd, ok := layer.Advance(testLayerH, rng)
	if !ok || cmd.Variant != 0 {
		t.Errorf("Advance = %+v %v, want variant 0", cmd, ok)
	}
}

func TestMaterializeAppliesAlphaFilter(t *testing.T) {
	layer := newTestLayer(t, 2, speedOne)
	for i := range layer.alpha.Pix {
		layer.alpha.Pix[i] = 128
	}
	layer.materialize(0, 1)
	if p := layer.buffers[0].At(0, 0); p.A != 128 || p.R != 10 {
		t.Errorf("pixel = %+v, want R 10 A 128", p)
	}
}

func TestPrimeMissingVariant(t *testing.T) {
	l := testLayerLayout(t, 2)
	a := newTestArena(t, func(a *Arena) { DeclareBackground(a, testLayerW, testLayerH, 3) })
	layer, _ := NewBackgroundAnimation(a, "bg", 0, speedOne, testLayerW, testLayerH, 3)
	if err := layer.Prime(testLayerAssets(t, l)); err == nil {
		t.Error("Prime succeeded with a variant missing from the blob")
	}
}
