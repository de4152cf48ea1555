package punkrun

import (
	"math"
	"math/rand/v2"
)

// BuildBlob returns a blob matching l with a valid header. fill is called
// once per entry with the entry's raw byte range; a nil fill leaves entries
// zeroed.
func BuildBlob(l *Layout, fill func(e LayoutEntry, raw []byte)) []byte {
	blob := make([]byte, l.BlobSize())
	l.putHeader(blob)
	l.putDirectory(blob)
	if fill == nil {
		return blob
	}
	for _, e := range l.Entries {
		fill(e, blob[e.Offset:e.Offset+e.Size])
	}
	return blob
}

// GenerateBlob builds a blob of procedural placeholder art for l. It stands
// in for the packaged asset file during development and in tests.
func GenerateBlob(l *Layout, seed uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	return BuildBlob(l, func(e LayoutEntry, raw []byte) {
		switch e.Class {
		case ClassImage4:
			generateImage(e, raw, rng)
		case ClassTable4:
			generateTable(raw, rng)
		case ClassFilterAlpha:
			generateAlpha(e, raw)
		case ClassFilterTable:
			generateHills(e, raw, rng)
		}
	})
}

// generateImage paints a framed sprite with a diagonal gradient.
func generateImage(e LayoutEntry, raw []byte, rng *rand.Rand) {
	base := Pixel{R: uint8(rng.IntN(200) + 40), G: uint8(rng.IntN(200) + 40), B: uint8(rng.IntN(200) + 40), A: 255}
	w, h := int(e.Width), int(e.Height)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := base
			t := uint8((x + y) * 64 / max(1, w+h))
			p.R = satAdd(p.R, t)
			p.G = satAdd(p.G, t/2)
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				p = Pixel{R: 16, G: 16, B: 24, A: 255}
			}
			i := 4 * (y*w + x)
			raw[i], raw[i+1], raw[i+2], raw[i+3] = p.R, p.G, p.B, p.A
		}
	}
}

// generateTable writes a color ramp. Index 0 is transparent.
func generateTable(raw []byte, rng *rand.Rand) {
	hue := rng.Float64()
	for i := 1; i < 256; i++ {
		t := float64(i) / 255
		raw[4*i] = uint8(60 + 150*t*hue)
		raw[4*i+1] = uint8(40 + 120*t)
		raw[4*i+2] = uint8(90 + 140*t*(1-hue))
		raw[4*i+3] = 255
	}
}

// generateAlpha fades from opaque at the bottom columns to translucent at
// the top.
func generateAlpha(e LayoutEntry, raw []byte) {
	w := int(e.Width)
	for i := range raw {
		col := i % w
		raw[i] = uint8(128 + 127*col/max(1, w-1))
	}
}

// generateHills draws a skyline whose profile is periodic over the entry
// height, so consecutive variants join without a seam.
func generateHills(e LayoutEntry, raw []byte, rng *rand.Rand) {
	w, h := int(e.Width), int(e.Height)
	waves := float64(rng.IntN(3) + 1)
	phase := rng.Float64() * 2 * math.Pi
	amp := float64(w) * (0.15 + 0.2*rng.Float64())
	floor := float64(w) * 0.35
	for row := 0; row < h; row++ {
		angle := 2*math.Pi*waves*float64(row)/float64(h) + phase
		top := w - int(floor+amp*(1+math.Sin(angle))/2)
		for col := 0; col < w; col++ {
			var v uint8
			if col >= top {
				v = uint8(1 + 254*(col-top)/max(1, w-top))
			}
			raw[row*w+col] = v
		}
	}
}

func satAdd(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}
